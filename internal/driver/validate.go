package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nathanbeddoewebdev/flexctl/internal/domain"
)

// Severity grades a validation event.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "OK"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Checks run for every template.
const (
	CheckLocation = "location"
	CheckImage    = "image"
	CheckHardware = "hardware"
)

// ValidationEvent is the outcome of one check on one template.
type ValidationEvent struct {
	Template string
	Check    string
	Severity Severity
	Message  string
}

// ValidationContext receives validation events as they are produced.
type ValidationContext interface {
	ValidationEvent(ev ValidationEvent)
}

// ValidationFunc adapts a function to ValidationContext.
type ValidationFunc func(ev ValidationEvent)

// ValidationEvent calls f.
func (f ValidationFunc) ValidationEvent(ev ValidationEvent) { f(ev) }

// Messages holds the format strings used in validation events. Each is
// passed to fmt.Sprintf with the arguments noted.
type Messages struct {
	LocationOK           string // template, location id
	LocationNotFound     string // template, location id
	LocationLookupFailed string // template, location id, error
	HardwareOK           string // template, hardware id
	HardwareNotFound     string // template, hardware id
	HardwareLookupFailed string // template, hardware id, error
	ImageOK              string // template, image id
	ImageNotFound        string // template, image id
	ImageLookupFailed    string // template, image id, error
	ImageNoDefaultUser   string // template, image id
	ImageUserMismatch    string // template, image default user, template username
	ImageNoGenPassword   string // template, image id
	StaticCredentials    string // template
	ValidationFailed     string // number of failed checks
}

// DefaultMessages returns the English message table.
func DefaultMessages() Messages {
	return Messages{
		LocationOK:           "Template %s: location %s found",
		LocationNotFound:     "Template %s: location %s does not exist",
		LocationLookupFailed: "Template %s: could not look up location %s: %v",
		HardwareOK:           "Template %s: hardware %s found",
		HardwareNotFound:     "Template %s: hardware %s does not exist",
		HardwareLookupFailed: "Template %s: could not look up hardware %s: %v",
		ImageOK:              "Template %s: image %s found",
		ImageNotFound:        "Template %s: image %s does not exist",
		ImageLookupFailed:    "Template %s: could not look up image %s: %v",
		ImageNoDefaultUser:   "Template %s: image %s has no default user configured",
		ImageUserMismatch:    "Template %s: image default user %q does not match template username %q",
		ImageNoGenPassword:   "Template %s: image %s does not generate passwords",
		StaticCredentials:    "Template %s: static passwords and key files are not supported and will be ignored",
		ValidationFailed:     "Cloud configuration is invalid: %d check(s) failed",
	}
}

// ValidateCloudConfiguration checks every template against the provider.
// Each template produces one event per check (location, image, hardware).
// All events are emitted before any failure is returned.
func (d *Driver) ValidateCloudConfiguration(ctx context.Context, vc ValidationContext) error {
	if err := d.ready(); err != nil {
		return err
	}
	if vc == nil {
		vc = ValidationFunc(func(ValidationEvent) {})
	}

	var failures []error
	for _, name := range d.cloud.TemplateNames() {
		t := d.cloud.Templates[name]
		for _, ev := range []ValidationEvent{
			d.checkLocation(ctx, name, t),
			d.checkImage(ctx, name, t),
			d.checkHardware(ctx, name, t),
		} {
			d.log.V(1).Info("Validation event", "template", ev.Template, "check", ev.Check, "severity", ev.Severity.String())
			vc.ValidationEvent(ev)
			if ev.Severity == SeverityError {
				failures = append(failures, errors.New(ev.Message))
			}
		}
	}

	if len(failures) > 0 {
		return domain.NewProvisioningError(fmt.Sprintf(d.messages.ValidationFailed, len(failures)), errors.Join(failures...))
	}
	return nil
}

func (d *Driver) checkLocation(ctx context.Context, name string, t *ComputeTemplate) ValidationEvent {
	m := d.messages
	ev := ValidationEvent{Template: name, Check: CheckLocation}
	loc, err := d.compute.GetLocation(ctx, t.LocationID)
	switch {
	case err != nil:
		ev.Severity, ev.Message = SeverityError, fmt.Sprintf(m.LocationLookupFailed, name, t.LocationID, err)
	case loc == nil:
		ev.Severity, ev.Message = SeverityError, fmt.Sprintf(m.LocationNotFound, name, t.LocationID)
	default:
		ev.Severity, ev.Message = SeverityOK, fmt.Sprintf(m.LocationOK, name, t.LocationID)
	}
	return ev
}

func (d *Driver) checkHardware(ctx context.Context, name string, t *ComputeTemplate) ValidationEvent {
	m := d.messages
	ev := ValidationEvent{Template: name, Check: CheckHardware}
	hw, err := d.compute.GetHardware(ctx, t.HardwareID)
	switch {
	case err != nil:
		ev.Severity, ev.Message = SeverityError, fmt.Sprintf(m.HardwareLookupFailed, name, t.HardwareID, err)
	case hw == nil:
		ev.Severity, ev.Message = SeverityError, fmt.Sprintf(m.HardwareNotFound, name, t.HardwareID)
	default:
		ev.Severity, ev.Message = SeverityOK, fmt.Sprintf(m.HardwareOK, name, t.HardwareID)
	}
	return ev
}

// checkImage grades the image by its worst finding and reports every
// finding in the message.
func (d *Driver) checkImage(ctx context.Context, name string, t *ComputeTemplate) ValidationEvent {
	m := d.messages
	ev := ValidationEvent{Template: name, Check: CheckImage}
	image, err := d.compute.GetImage(ctx, t.ImageID)
	if err != nil {
		ev.Severity, ev.Message = SeverityError, fmt.Sprintf(m.ImageLookupFailed, name, t.ImageID, err)
		return ev
	}
	if image == nil {
		ev.Severity, ev.Message = SeverityError, fmt.Sprintf(m.ImageNotFound, name, t.ImageID)
		return ev
	}

	var findings []string
	raise := func(s Severity, msg string) {
		if s > ev.Severity {
			ev.Severity = s
		}
		findings = append(findings, msg)
	}

	switch {
	case image.DefaultUser == "":
		raise(SeverityError, fmt.Sprintf(m.ImageNoDefaultUser, name, t.ImageID))
	case image.DefaultUser != t.Username:
		raise(SeverityError, fmt.Sprintf(m.ImageUserMismatch, name, image.DefaultUser, t.Username))
	}
	if !image.GenPassword {
		raise(SeverityError, fmt.Sprintf(m.ImageNoGenPassword, name, t.ImageID))
	}
	if t.Password != "" || t.KeyFile != "" {
		raise(SeverityWarning, fmt.Sprintf(m.StaticCredentials, name))
	}

	if len(findings) == 0 {
		ev.Message = fmt.Sprintf(m.ImageOK, name, t.ImageID)
	} else {
		ev.Message = strings.Join(findings, "; ")
	}
	return ev
}
