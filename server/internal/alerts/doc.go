// Package alerts implements the rule evaluation engine and webhook delivery
// for hull fouling alerts. Rules such as "fouling_pct > 70" or
// "recommended_cleaning == true" are evaluated against every prediction
// snapshot; firing and resolution are delivered to Slack, Teams or generic
// HTTP webhooks.
package alerts
