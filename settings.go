package canopy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
)

// Settings is the configuration every Container in a Scene reads.
type Settings struct {
	// EnableInteractionInTransition leaves containers interactable while
	// they transition.
	EnableInteractionInTransition bool `mapstructure:"enable_interaction_in_transition"`
	// ControlInteractionAllContainerKinds disables every container in the
	// scene during any transition, instead of only the one transitioning.
	ControlInteractionAllContainerKinds bool `mapstructure:"control_interaction_all_container_kinds"`
	// CallCleanupOnDestroy runs Cleanup hooks when screens are unregistered.
	CallCleanupOnDestroy bool `mapstructure:"call_cleanup_on_destroy"`

	// DefaultAnimation names the animation used when a screen has no
	// matching entry (see NamedAnimation).
	DefaultAnimation string `mapstructure:"default_animation"`
	// DefaultAnimationDuration is in seconds.
	DefaultAnimationDuration float64 `mapstructure:"default_animation_duration"`
	// BackdropAlpha is the opacity of the popup backdrop.
	BackdropAlpha float64 `mapstructure:"backdrop_alpha"`
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() Settings {
	return Settings{
		EnableInteractionInTransition:       false,
		ControlInteractionAllContainerKinds: true,
		CallCleanupOnDestroy:                true,
		DefaultAnimation:                    "fade",
		DefaultAnimationDuration:            0.25,
		BackdropAlpha:                       0.5,
	}
}

// Validate checks value ranges and the default animation name.
func (s Settings) Validate() error {
	if s.DefaultAnimationDuration < 0 {
		return fmt.Errorf("canopy: default_animation_duration must be >= 0, got %v", s.DefaultAnimationDuration)
	}
	if s.BackdropAlpha < 0 || s.BackdropAlpha > 1 {
		return fmt.Errorf("canopy: backdrop_alpha must be in [0, 1], got %v", s.BackdropAlpha)
	}
	if _, err := NamedAnimation(s.DefaultAnimation, true, s.DefaultAnimationDuration); err != nil {
		return err
	}
	return nil
}

// ParseSettings decodes TOML settings on top of DefaultSettings.
func ParseSettings(data []byte) (Settings, error) {
	raw, err := parseSettingsTOML("<bytes>", data)
	if err != nil {
		return Settings{}, err
	}
	return decodeSettings(raw)
}

// LoadSettings reads TOML settings from path and applies overrides on top.
// A missing file is not an error; defaults are used instead. Override
// values may be strings ("true", "0.4"); they are converted to the field's
// type.
func LoadSettings(path string, overrides map[string]any) (Settings, error) {
	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Settings{}, fmt.Errorf("reading settings %s: %w", path, err)
		default:
			raw, err = parseSettingsTOML(path, data)
			if err != nil {
				return Settings{}, err
			}
		}
	}
	for k, v := range overrides {
		raw[k] = v
	}
	return decodeSettings(raw)
}

// ParseOverrides turns "key=value" pairs into an overrides map.
func ParseOverrides(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("canopy: override %q is not key=value", p)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}

func parseSettingsTOML(source string, data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", source, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func decodeSettings(raw map[string]any) (Settings, error) {
	s := DefaultSettings()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Settings{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
