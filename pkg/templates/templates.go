package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Template names
const (
	BuildReport       = "build-report"
	UATReleaseReport  = "uat-release-report"
	ProdReleaseReport = "prod-release-report"
)

// TemplateData holds variables for template rendering.
type TemplateData map[string]string

// builtin holds the default template content shipped with the binary.
// A template file found on the filesystem takes precedence.
var builtin = map[string]string{
	BuildReport:       buildReportTemplate,
	UATReleaseReport:  uatReleaseReportTemplate,
	ProdReleaseReport: prodReleaseReportTemplate,
}

// GetTemplatePaths returns the search paths for templates
func GetTemplatePaths(templateName string) []string {
	filename := templateName + ".template"
	return []string{
		filepath.Join(".", "templates", filename),
		filepath.Join(".", "config", "templates", filename),
		filepath.Join("/etc", "buildlens", "templates", filename),
	}
}

// GetTemplate returns the raw template content by name.
// Filesystem overrides are checked first, in the following order:
// 1. ./templates/<name>.template
// 2. ./config/templates/<name>.template
// 3. /etc/buildlens/templates/<name>.template
// If no override exists, the built-in template is returned.
func GetTemplate(name string) (string, error) {
	if !ValidateTemplate(name) {
		return "", fmt.Errorf("unknown template: %s", name)
	}

	paths := GetTemplatePaths(name)
	for _, path := range paths {
		if content, err := os.ReadFile(path); err == nil {
			return string(content), nil
		}
	}

	return builtin[name], nil
}

// Render renders a template with the given data.
// Uses {{PLACEHOLDER}} syntax for variable substitution.
//
// Example:
//   data := TemplateData{
//       "BUILD_NUMBER": "20250101.1",
//       "RESULT": "succeeded",
//   }
//   rendered, err := Render(BuildReport, data)
func Render(templateName string, data TemplateData) (string, error) {
	tmplContent, err := GetTemplate(templateName)
	if err != nil {
		return "", err
	}

	// Replace placeholders
	rendered := tmplContent
	for key, value := range data {
		placeholder := fmt.Sprintf("{{%s}}", key)
		rendered = strings.ReplaceAll(rendered, placeholder, value)
	}

	return rendered, nil
}

// ListTemplates returns a list of all available template names.
func ListTemplates() []string {
	return []string{
		BuildReport,
		UATReleaseReport,
		ProdReleaseReport,
	}
}

// ValidateTemplate checks if a template name is valid.
func ValidateTemplate(name string) bool {
	_, ok := builtin[name]
	return ok
}
