package healthtips

import (
	"encoding/json"
	"errors"
	"strings"
)

type parsedTips struct {
	Tips       []string
	Disclaimer string
}

func parseTips(raw string, maxTips int) (parsedTips, error) {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))

	var wire struct {
		HealthTips json.RawMessage `json:"healthTips"`
		Disclaimer string          `json:"disclaimer"`
	}
	if err := json.Unmarshal([]byte(sanitized), &wire); err != nil {
		return parsedTips{}, err
	}
	tips, err := coerceStringArray(wire.HealthTips)
	if err != nil {
		return parsedTips{}, err
	}
	tips = normalizeList(tips)
	if len(tips) == 0 {
		return parsedTips{}, errors.New("health tips missing")
	}
	if maxTips > 0 && len(tips) > maxTips {
		tips = tips[:maxTips]
	}
	return parsedTips{Tips: tips, Disclaimer: strings.TrimSpace(wire.Disclaimer)}, nil
}

func coerceStringArray(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch raw[0] {
	case '"':
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		if strings.TrimSpace(single) == "" {
			return nil, nil
		}
		return []string{single}, nil
	case '[':
		var many []string
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, err
		}
		return many, nil
	default:
		return nil, errors.New("unsupported healthTips format")
	}
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{})
	for _, item := range items {
		clean := strings.TrimSpace(item)
		if clean == "" {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}
