package theme

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// manifest is the subset of a Chrome theme manifest.json we consume.
type manifest struct {
	Name  string `json:"name"`
	Theme *struct {
		Colors map[string][]int `json:"colors"`
	} `json:"theme"`
}

// ImportManifest parses a Chrome-style theme manifest and derives a Theme.
// Malformed manifests are rejected with a validation error; the caller must
// not mutate any state on failure. Colors the manifest does not carry fall
// back to the default theme.
func ImportManifest(data []byte) (string, Theme, error) {
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return "", Theme{}, fmt.Errorf("failed to parse manifest.json: %w", err)
	}
	if m.Theme == nil || strings.TrimSpace(m.Name) == "" {
		return "", Theme{}, errors.New("invalid manifest.json: missing theme or name")
	}

	base := builtins()[Default]
	out := base
	out.Name = m.Name

	assign := func(key string, dst *string) error {
		rgb, ok := m.Theme.Colors[key]
		if !ok {
			return nil
		}
		hex, err := rgbHex(rgb)
		if err != nil {
			return fmt.Errorf("invalid manifest.json: color %q: %w", key, err)
		}
		*dst = hex
		return nil
	}

	for _, field := range []struct {
		key string
		dst *string
	}{
		{"frame", &out.DesktopBG},
		{"toolbar", &out.WindowBG},
		{"bookmark_text", &out.TitleText},
		{"tab_text", &out.Text},
		{"button_background", &out.Accent},
	} {
		if err := assign(field.key, field.dst); err != nil {
			return "", Theme{}, err
		}
	}

	return IDForName(m.Name), out, nil
}

// ImportManifestFile reads and imports a manifest from disk. Only files
// named manifest.json are accepted, matching the import control's contract.
func ImportManifestFile(path string) (string, Theme, error) {
	if !strings.HasSuffix(path, "manifest.json") {
		return "", Theme{}, errors.New("please select a valid Chrome theme manifest.json file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", Theme{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ImportManifest(data)
}

// LoadBackgroundImage reads an image file and returns it as a data URL for
// the desktop background. Non-image files are a validation error.
func LoadBackgroundImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", errors.New("please select an image file")
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
