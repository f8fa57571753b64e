package doctor

import (
	"context"
	"errors"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/ragdesk/internal/core/config"
)

// ConfigCheck validates the configuration file.
type ConfigCheck struct {
	config     *config.Config
	configPath string
}

// NewConfigCheck creates a new configuration check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{
		config:     cfg,
		configPath: configPath,
	}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if c.config == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Config loaded",
			Status: StatusFail,
			Detail: "configuration not loaded",
		})
		return result
	}

	result.Items = append(result.Items, c.sourceItem())

	err := c.config.ValidateDeep(c.configPath)
	if err == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Config valid",
			Status: StatusPass,
		})
	} else {
		var fieldErrs criterio.FieldErrors
		if !errors.As(err, &fieldErrs) {
			fieldErrs = criterio.FieldErrors{{Err: err}}
		}
		for _, fe := range fieldErrs {
			label := fe.Field
			if label == "" {
				label = "validation"
			}
			result.Items = append(result.Items, CheckItem{
				Label:  label,
				Status: StatusFail,
				Detail: fe.Err.Error(),
			})
		}
	}

	for _, w := range c.config.Warnings() {
		label := w.Category
		if w.Item != "" {
			label += " (" + w.Item + ")"
		}
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusWarn,
			Detail: w.Message,
		})
	}

	return result
}

// sourceItem reports where settings come from. A missing file is fine:
// built-in defaults apply.
func (c *ConfigCheck) sourceItem() CheckItem {
	if c.configPath == "" {
		return CheckItem{Label: "Config file", Status: StatusPass, Detail: "using built-in defaults"}
	}

	if _, err := os.Stat(c.configPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return CheckItem{Label: "Config file", Status: StatusPass, Detail: c.configPath + " not found, using built-in defaults"}
		}
		return CheckItem{Label: "Config file", Status: StatusFail, Detail: err.Error()}
	}

	return CheckItem{Label: "Config file", Status: StatusPass, Detail: c.configPath}
}
