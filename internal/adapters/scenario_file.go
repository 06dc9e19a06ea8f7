package adapters

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Scenario describes the store the simulated adapter pretends to be.
type Scenario struct {
	Packaged         bool             `yaml:"packaged" toml:"packaged" json:"packaged"`
	InstalledVersion string           `yaml:"installed_version" toml:"installed_version" json:"installed_version"`
	Product          ScenarioProduct  `yaml:"product" toml:"product" json:"product"`
	Updates          []ScenarioUpdate `yaml:"updates" toml:"updates" json:"updates"`
	Install          ScenarioInstall  `yaml:"install" toml:"install" json:"install"`
	Errors           ScenarioErrors   `yaml:"errors" toml:"errors" json:"errors"`
}

type ScenarioProduct struct {
	StoreID    string `yaml:"store_id" toml:"store_id" json:"store_id"`
	Title      string `yaml:"title" toml:"title" json:"title"`
	ListingURL string `yaml:"listing_url" toml:"listing_url" json:"listing_url"`
}

type ScenarioUpdate struct {
	PackageFamilyName string `yaml:"package_family_name" toml:"package_family_name" json:"package_family_name"`
	Version           string `yaml:"version" toml:"version" json:"version"`
	Mandatory         bool   `yaml:"mandatory" toml:"mandatory" json:"mandatory"`
}

type ScenarioInstall struct {
	State string `yaml:"state" toml:"state" json:"state"`
}

// ScenarioErrors injects a failure into individual store operations.
type ScenarioErrors struct {
	ListUpdates    *ScenarioError `yaml:"list_updates" toml:"list_updates" json:"list_updates"`
	InstallUpdates *ScenarioError `yaml:"install_updates" toml:"install_updates" json:"install_updates"`
	ProductInfo    *ScenarioError `yaml:"product_info" toml:"product_info" json:"product_info"`
}

// ScenarioError is a platform failure unless Generic is set.
type ScenarioError struct {
	HResult uint32 `yaml:"hresult" toml:"hresult" json:"hresult"`
	Message string `yaml:"message" toml:"message" json:"message"`
	Generic bool   `yaml:"generic" toml:"generic" json:"generic"`
}

type scenarioFormat int

const (
	scenarioFormatUnknown scenarioFormat = iota
	scenarioFormatYAML
	scenarioFormatTOML
	scenarioFormatJSON
)

// LoadScenario reads a YAML, TOML or JSON scenario file.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("scenario file not found").
			WithCause(err)
	}
	return parseScenario(data, detectScenarioFormat(path, data))
}

func parseScenario(data []byte, format scenarioFormat) (Scenario, error) {
	var scenario Scenario
	var err error
	switch format {
	case scenarioFormatYAML:
		err = yaml.Unmarshal(data, &scenario)
	case scenarioFormatTOML:
		err = toml.Unmarshal(data, &scenario)
	case scenarioFormatJSON:
		err = json.Unmarshal(data, &scenario)
	default:
		return Scenario{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown scenario file format")
	}
	if err != nil {
		return Scenario{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse scenario").
			WithCause(err)
	}
	return scenario, nil
}

func detectScenarioFormat(path string, data []byte) scenarioFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return scenarioFormatYAML
	case ".toml":
		return scenarioFormatTOML
	case ".json":
		return scenarioFormatJSON
	}
	return sniffScenarioFormat(data)
}

var tomlKeyValue = regexp.MustCompile(`^[A-Za-z0-9_."-]+\s*=`)

// sniffScenarioFormat guesses the format of extensionless files.
func sniffScenarioFormat(data []byte) scenarioFormat {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		return scenarioFormatJSON
	}
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") || tomlKeyValue.MatchString(line) {
			return scenarioFormatTOML
		}
		if strings.Contains(line, ":") {
			return scenarioFormatYAML
		}
	}
	return scenarioFormatUnknown
}
