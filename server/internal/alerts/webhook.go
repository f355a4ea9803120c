package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// deliver posts a to every webhook target that has a URL. Failures are
// logged per target and never reach the caller.
func (e *Engine) deliver(a *Alert) {
	for _, wh := range e.webhooks {
		url := wh.URL()
		if url == "" {
			continue
		}
		body, err := webhookPayload(wh.Type, a)
		if err == nil {
			err = e.post(url, body)
		}
		if err != nil {
			slog.Error("alerts: webhook delivery failed",
				"type", wh.Type, "rule", a.RuleName, "vessel", a.VesselID, "err", err)
			continue
		}
		slog.Debug("alerts: webhook delivered",
			"type", wh.Type, "rule", a.RuleName, "state", a.State)
	}
}

type slackMessage struct {
	Text string `json:"text"`
}

type teamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type teamsSection struct {
	Facts []teamsFact `json:"facts"`
}

type teamsCard struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor"`
	Summary    string         `json:"summary"`
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	Sections   []teamsSection `json:"sections"`
}

type httpHook struct {
	Alert *Alert `json:"alert"`
}

// webhookPayload renders a in the body format of the given target type.
func webhookPayload(kind string, a *Alert) ([]byte, error) {
	switch kind {
	case "slack":
		return json.Marshal(slackMessage{Text: slackText(a)})
	case "teams":
		title := "Hull fouling alert: " + a.RuleName
		color := severityColor(a.Severity)
		if a.State == StateResolved {
			title = "Resolved: " + a.RuleName
			color = resolvedColor
		}
		return json.Marshal(teamsCard{
			Type:       "MessageCard",
			Context:    "http://schema.org/extensions",
			ThemeColor: color,
			Summary:    a.RuleName,
			Title:      title,
			Text:       a.Message,
			Sections: []teamsSection{{Facts: []teamsFact{
				{Name: "Vessel", Value: a.VesselID},
				{Name: "Severity", Value: a.Severity},
				{Name: "Value", Value: strconv.FormatFloat(a.Value, 'f', 2, 64)},
			}}},
		})
	case "http":
		return json.Marshal(httpHook{Alert: a})
	default:
		return nil, fmt.Errorf("unknown webhook type %q", kind)
	}
}

func slackText(a *Alert) string {
	if a.State == StateResolved {
		return fmt.Sprintf("*[RESOLVED]* %s on %s", a.RuleName, a.VesselID)
	}
	return fmt.Sprintf("*[%s]* %s", strings.ToUpper(a.Severity), a.Message)
}

func (e *Engine) post(url string, body []byte) error {
	resp, err := e.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

const resolvedColor = "2EB67D"

func severityColor(s string) string {
	switch s {
	case "critical":
		return "D92D20"
	case "warning":
		return "F79009"
	default:
		return "1570EF"
	}
}
