// pkg/render/profile.go

package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is the static company information printed on every invoice.
// Image paths are resolved relative to the profile file.
type Profile struct {
	Name      string `yaml:"name"`
	Title     string `yaml:"title"`
	Address   string `yaml:"address"`
	Phone     string `yaml:"phone"`
	Email     string `yaml:"email"`
	Signatory string `yaml:"signatory"`
	Logo      string `yaml:"logo"`
	Stamp     string `yaml:"stamp"`
	Signature string `yaml:"signature"`
}

// DefaultProfile is used when no profile file is configured.
func DefaultProfile() Profile {
	return Profile{
		Name:  "ITCAM Security Pvt. Ltd.",
		Title: "INVOICE ~ IT CAM Security",
	}
}

// LoadProfile reads a YAML company profile.
func LoadProfile(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read company profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Profile{}, fmt.Errorf("parse company profile %s: %w", path, err)
	}
	if strings.TrimSpace(p.Name) == "" {
		return Profile{}, fmt.Errorf("company profile %s: name is required", path)
	}
	base := filepath.Dir(path)
	p.Logo = resolve(base, p.Logo)
	p.Stamp = resolve(base, p.Stamp)
	p.Signature = resolve(base, p.Signature)
	return p, nil
}

// DisplayTitle is the heading line of the document.
func (p Profile) DisplayTitle() string {
	if strings.TrimSpace(p.Title) != "" {
		return p.Title
	}
	return "INVOICE ~ " + p.Name
}

func resolve(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
