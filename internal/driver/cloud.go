package driver

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template override keys understood by the driver.
const (
	OverrideEndpoint         = "flexiant.endpoint"
	OverrideDiskProductOffer = "diskProductOffer"
)

// Cloud is the host-supplied description of the provider account, the
// naming of managed machines, and the compute templates available.
type Cloud struct {
	Name          string                      `yaml:"name"`
	User          CloudUser                   `yaml:"user"`
	Provider      CloudProvider               `yaml:"provider"`
	Configuration CloudConfiguration          `yaml:"configuration"`
	Templates     map[string]*ComputeTemplate `yaml:"templates"`
}

// CloudUser holds the API credentials. User has the form "<customerUUID>/<login>".
type CloudUser struct {
	User   string `yaml:"user"`
	APIKey string `yaml:"apiKey"`
}

// CloudProvider holds machine naming and sizing for the deployment.
type CloudProvider struct {
	ManagementGroup            string `yaml:"managementGroup"`
	MachineNamePrefix          string `yaml:"machineNamePrefix"`
	NumberOfManagementMachines int    `yaml:"numberOfManagementMachines"`
}

// CloudConfiguration selects the template used for management machines.
type CloudConfiguration struct {
	ManagementMachineTemplate string `yaml:"managementMachineTemplate"`
}

// ComputeTemplate describes how to build one kind of machine.
type ComputeTemplate struct {
	HardwareID     string            `yaml:"hardwareId"`
	LocationID     string            `yaml:"locationId"`
	ImageID        string            `yaml:"imageId"`
	Username       string            `yaml:"username"`
	Password       string            `yaml:"password"`
	KeyFile        string            `yaml:"keyFile"`
	OpenFilesLimit int               `yaml:"openFilesLimit"`
	ComputeNetwork []string          `yaml:"computeNetwork"`
	Overrides      map[string]string `yaml:"overrides"`
}

// Endpoint returns the provider API URL set in the template overrides.
func (t *ComputeTemplate) Endpoint() string {
	return t.Overrides[OverrideEndpoint]
}

// DiskProductOffer returns the disk product offer set in the template overrides.
func (t *ComputeTemplate) DiskProductOffer() string {
	return t.Overrides[OverrideDiskProductOffer]
}

// Network returns the first compute network, or "" when none is configured.
func (t *ComputeTemplate) Network() string {
	if len(t.ComputeNetwork) == 0 {
		return ""
	}
	return t.ComputeNetwork[0]
}

// ManagementTemplate returns the template named by
// configuration.managementMachineTemplate.
func (c *Cloud) ManagementTemplate() (*ComputeTemplate, error) {
	return c.Template(c.Configuration.ManagementMachineTemplate)
}

// Template returns the named template.
func (c *Cloud) Template(name string) (*ComputeTemplate, error) {
	t, ok := c.Templates[name]
	if !ok || t == nil {
		return nil, fmt.Errorf("template %q is not defined", name)
	}
	return t, nil
}

// TemplateNames returns the template names in a stable order.
func (c *Cloud) TemplateNames() []string {
	names := make([]string, 0, len(c.Templates))
	for name := range c.Templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadCloud reads and parses a cloud description from disk.
func LoadCloud(path string) (*Cloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cloud file: %w", err)
	}
	defer f.Close()

	return DecodeCloud(f)
}

// DecodeCloud parses YAML into a Cloud, rejecting unknown fields.
func DecodeCloud(r io.Reader) (*Cloud, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cloud Cloud
	if err := dec.Decode(&cloud); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("parse cloud file: empty document")
		}
		return nil, fmt.Errorf("parse cloud file: %w", err)
	}

	if err := cloud.Validate(); err != nil {
		return nil, err
	}
	return &cloud, nil
}

// Validate performs the structural checks that do not need the provider.
func (c *Cloud) Validate() error {
	var problems []string
	if c.User.User == "" {
		problems = append(problems, "user.user is required")
	}
	if c.Configuration.ManagementMachineTemplate == "" {
		problems = append(problems, "configuration.managementMachineTemplate is required")
	} else if mt, err := c.ManagementTemplate(); err != nil {
		problems = append(problems, fmt.Sprintf("management machine %s", err))
	} else if mt.Endpoint() == "" {
		problems = append(problems, fmt.Sprintf("template %q must set the %s override", c.Configuration.ManagementMachineTemplate, OverrideEndpoint))
	}
	for _, name := range c.TemplateNames() {
		if c.Templates[name] == nil {
			problems = append(problems, fmt.Sprintf("template %q is empty", name))
		}
	}
	if c.Provider.NumberOfManagementMachines < 0 {
		problems = append(problems, "provider.numberOfManagementMachines must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid cloud file: %s", strings.Join(problems, "; "))
	}
	return nil
}
