package widget

import (
	"encoding/json"
	"strings"
)

type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchContains MatchType = "contains"
	MatchStarts   MatchType = "starts"
)

type URLPattern struct {
	Pattern string    `json:"pattern"`
	Type    MatchType `json:"type"`
}

// URLPatterns decodes either {"include":[...],"exclude":[...]} or a bare
// list, which is read as the include list. Plain strings inside a list are
// "contains" patterns.
type URLPatterns struct {
	Include []URLPattern `json:"include"`
	Exclude []URLPattern `json:"exclude"`
}

func (p *URLPatterns) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*p = URLPatterns{}
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		list, err := decodePatternList(data)
		if err != nil {
			return err
		}
		*p = URLPatterns{Include: list}
		return nil
	}

	var raw struct {
		Include json.RawMessage `json:"include"`
		Exclude json.RawMessage `json:"exclude"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	include, err := decodePatternList(raw.Include)
	if err != nil {
		return err
	}
	exclude, err := decodePatternList(raw.Exclude)
	if err != nil {
		return err
	}
	*p = URLPatterns{Include: include, Exclude: exclude}
	return nil
}

func decodePatternList(data json.RawMessage) ([]URLPattern, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	patterns := make([]URLPattern, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s != "" {
				patterns = append(patterns, URLPattern{Pattern: s, Type: MatchContains})
			}
			continue
		}

		var pat struct {
			Pattern   string `json:"pattern"`
			URL       string `json:"url"`
			Type      string `json:"type"`
			MatchType string `json:"match_type"`
		}
		if err := json.Unmarshal(item, &pat); err != nil {
			return nil, err
		}
		value := pat.Pattern
		if value == "" {
			value = pat.URL
		}
		if value == "" {
			continue
		}
		kind := pat.Type
		if kind == "" {
			kind = pat.MatchType
		}
		patterns = append(patterns, URLPattern{Pattern: value, Type: normalizeMatchType(kind)})
	}
	return patterns, nil
}

func normalizeMatchType(kind string) MatchType {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "exact", "equals":
		return MatchExact
	case "starts", "starts_with", "starts-with", "startswith", "prefix":
		return MatchStarts
	default:
		return MatchContains
	}
}

func (p URLPatterns) clone() URLPatterns {
	out := URLPatterns{}
	if len(p.Include) > 0 {
		out.Include = append([]URLPattern(nil), p.Include...)
	}
	if len(p.Exclude) > 0 {
		out.Exclude = append([]URLPattern(nil), p.Exclude...)
	}
	return out
}
