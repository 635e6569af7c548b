package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/volsuite/volsuite/config"
)

// ConfigCmd implements the config shell command: print everything, print
// one setting, set one, or reset to defaults.
func (s *Session) ConfigCmd(args []string) error {
	if len(args) == 0 {
		return s.printConfig()
	}

	if args[0] == "reset" {
		confirmed, err := PromptConfirmReset()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(s.out, dimStyle.Render("Reset cancelled."))
			return nil
		}
		if err := s.manager.Reset(); err != nil {
			return err
		}
		s.reloadClients(s.manager.Get())
		fmt.Fprintln(s.out, successStyle.Render("Configuration file has been reset to default settings."))
		return nil
	}

	key := args[0]
	settings, err := s.settingsMap()
	if err != nil {
		return err
	}
	current, known := settings[key]
	if !known {
		return fmt.Errorf("%q is not recognized as a configurable variable", key)
	}

	if len(args) == 1 {
		fmt.Fprintf(s.out, "'%s' is currently set to: '%v'\n", key, current)
		return nil
	}

	// A list typed without quotes arrives split on spaces, rejoin it.
	raw := strings.Join(args[1:], " ")
	cfg := s.manager.Get()
	if err := applySetting(&cfg, key, raw); err != nil {
		return err
	}
	if err := s.manager.Update(cfg); err != nil {
		return err
	}
	s.reloadClients(cfg)
	fmt.Fprintf(s.out, "'%s' is now set to: '%s'\n", key, raw)
	return nil
}

func (s *Session) printConfig() error {
	data, err := json.MarshalIndent(s.manager.Get(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s\n", data)
	return nil
}

// settingsMap flattens the config into its json-tag key space, the same
// names the config file uses.
func (s *Session) settingsMap() (map[string]any, error) {
	data, err := json.Marshal(s.manager.Get())
	if err != nil {
		return nil, err
	}
	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// applySetting coerces the raw value and writes it onto the matching
// config field.
func applySetting(cfg *config.Config, key, raw string) error {
	value := TypeEval(raw)

	switch key {
	case "default_ticker":
		cfg.DefaultTicker = asString(value)
	case "export_folder":
		cfg.ExportFolder = asString(value)
	case "data_cache_dir":
		cfg.DataCacheDir = asString(value)
	case "iv_surface_cmap":
		cfg.IVSurfaceCmap = asString(value)
	case "display_max_rows":
		return setInt(&cfg.DisplayMaxRows, key, value)
	case "iv_surface_res":
		return setInt(&cfg.IVSurfaceRes, key, value)
	case "news_max_articles":
		return setInt(&cfg.NewsMaxArticles, key, value)
	case "cache_ttl_hours":
		return setInt(&cfg.CacheTTLHours, key, value)
	case "iv_surface_range":
		switch v := value.(type) {
		case float64:
			cfg.IVSurfaceRange = v
		case int64:
			cfg.IVSurfaceRange = float64(v)
		default:
			return fmt.Errorf("%s expects a number, got %q", key, raw)
		}
	case "cache_enabled":
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%s expects true or false, got %q", key, raw)
		}
		cfg.CacheEnabled = b
	case "hv_rolling_windows":
		list, ok := value.([]any)
		if !ok {
			return fmt.Errorf("%s expects a list like [5, 10, 20, 50], got %q", key, raw)
		}
		windows := make([]int, len(list))
		for i, item := range list {
			n, ok := item.(int64)
			if !ok {
				return fmt.Errorf("%s expects integer windows, got %v", key, item)
			}
			windows[i] = int(n)
		}
		cfg.HVRollingWindows = windows
	default:
		return fmt.Errorf("%q is not recognized as a configurable variable", key)
	}
	return nil
}

func asString(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}

func setInt(dst *int, key string, value any) error {
	n, ok := value.(int64)
	if !ok {
		return fmt.Errorf("%s expects an integer", key)
	}
	*dst = int(n)
	return nil
}
