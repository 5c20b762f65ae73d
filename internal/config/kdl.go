package config

import (
	"fmt"
	"os"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/tutorbase/faqsearch/internal/types"
)

// loadKDL parses a .faqsearch.kdl style configuration file. Unknown nodes
// are ignored so older engines tolerate newer config files.
func loadKDL(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "index":
			parseIndexNode(cfg, n)
		case "boosts":
			parseBoostsNode(cfg, n)
		case "session":
			parseSessionNode(cfg, n)
		}
	}

	return cfg, nil
}

func parseIndexNode(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "threshold":
			if v, ok := firstFloatArg(cn); ok {
				cfg.Index.Threshold = v
			}
		case "distance":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.Distance = v
			}
		case "ignore_location":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Index.IgnoreLocation = b
			}
		case "min_match_length":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.MinMatchLength = v
			}
		case "field_norm_weight":
			if v, ok := firstFloatArg(cn); ok {
				cfg.Index.FieldNormWeight = v
			}
		case "max_results":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.MaxResults = v
			}
		case "weights":
			for _, wn := range cn.Children {
				if v, ok := firstFloatArg(wn); ok {
					switch nodeName(wn) {
					case "question":
						cfg.Index.Weights.Question = v
					case "answer":
						cfg.Index.Weights.Answer = v
					case "keywords":
						cfg.Index.Weights.Keywords = v
					case "tags":
						cfg.Index.Weights.Tags = v
					case "category":
						cfg.Index.Weights.Category = v
					case "subcategory":
						cfg.Index.Weights.Subcategory = v
					}
				}
			}
		}
	}
}

func parseBoostsNode(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "boost_recent":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Boosts.BoostRecent = b
			}
		case "boost_featured":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Boosts.BoostFeatured = b
			}
		case "client_segment_boost":
			if s, ok := firstStringArg(cn); ok {
				cfg.Boosts.ClientSegmentBoost = types.Segment(s)
			}
		case "category_weight":
			if v, ok := firstFloatArg(cn); ok {
				cfg.Boosts.CategoryWeight = v
			}
		case "priority_weight":
			if v, ok := firstFloatArg(cn); ok {
				cfg.Boosts.PriorityWeight = v
			}
		case "text_match_weight":
			if v, ok := firstFloatArg(cn); ok {
				cfg.Boosts.TextMatchWeight = v
			}
		case "featured_multiplier":
			if v, ok := firstFloatArg(cn); ok {
				cfg.Boosts.FeaturedMultiplier = v
			}
		case "recency_window_days":
			if v, ok := firstIntArg(cn); ok {
				cfg.Boosts.RecencyWindowDays = v
			}
		case "recency_ceiling":
			if v, ok := firstFloatArg(cn); ok {
				cfg.Boosts.RecencyCeiling = v
			}
		}
	}
}

func parseSessionNode(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "debounce_ms":
			if v, ok := firstIntArg(cn); ok {
				cfg.Session.DebounceMs = v
			}
		case "min_query_length":
			if v, ok := firstIntArg(cn); ok {
				cfg.Session.MinQueryLength = v
			}
		case "max_suggestions":
			if v, ok := firstIntArg(cn); ok {
				cfg.Session.MaxSuggestions = v
			}
		case "auto_search":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Session.AutoSearch = b
			}
		case "performance_tracking":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Session.PerformanceTracking = b
			}
		}
	}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if v, ok := n.Arguments[0].Value.(bool); ok {
		return v, true
	}
	return false, false
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if v, ok := n.Arguments[0].Value.(string); ok {
		return v, true
	}
	return "", false
}
