// Package config loads and watches the agent configuration file (config.yaml).
//
// Top-level types:
//   - Config{Agent, Server}: full config tree parsed from YAML
//   - AgentConfig: server_endpoint, sample_interval, ship_interval,
//     buffer_size, vessels [], server_auth
//   - Vessel: id, name, variant (enhanced|baseline), last_cleaned,
//     idle_speed_knots, source
//   - Source: type (prometheus|json|static|simulated), endpoint, rate_limit,
//     seed, static observations, auth, tls
//   - AuthConfig: mode (mtls|apikey|bearer|basic|none), cert/key/ca files,
//     header, key_env, token_env, password_env; secrets resolve from the
//     environment
//
// Load(path) reads the YAML file, applies defaults (30s sample, 15s ship,
// 1000 buffer, enhanced variant, 0.5 kn idle speed), then validates.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create pattern
// used by atomic-save editors by re-adding the watch after each event.
package config
