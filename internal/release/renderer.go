// Where: internal/release/renderer.go
// What: Template loading and rendering for release documents.
// Why: Docs are rendered from a template tree, falling back to embedded defaults.
package release

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Template paths relative to the template source directory.
const (
	ReleaseReadmeTemplate  = "README.md"
	TopLevelReadmeTemplate = "toplevel/README.md"
	PermissionTemplate     = "toplevel/permission.md"
	LicenseTemplate        = "toplevel/LICENSE.md"
)

//go:embed templates
var defaultTemplates embed.FS

// TopLevelReadmeData feeds toplevel/README.md.
type TopLevelReadmeData struct {
	Releases    []Entry
	DualURL     string
	CurrentYear int
}

// PermissionsData feeds toplevel/permission.md; policies are pre-formatted JSON.
type PermissionsData struct {
	FullProvisioningPolicy       string
	RestrictedProvisioningPolicy string
	ExecutionPolicy              string
	ExecutionPolicyTrust         string
}

// LicenseData feeds toplevel/LICENSE.md.
type LicenseData struct {
	CurrentYear int
}

// ReleaseReadmeData feeds the per-release README.md.
type ReleaseReadmeData struct {
	Version     string
	TemplateURL string
	Regions     []string
	Parameters  []Parameter
}

// Renderer executes text templates with the sprig function map.
type Renderer struct {
	fsys  fs.FS
	cache map[string]*template.Template
}

// NewRenderer reads templates from sourceDir, or from the embedded defaults
// when sourceDir is empty.
func NewRenderer(sourceDir string) (*Renderer, error) {
	sourceDir = strings.TrimSpace(sourceDir)
	if sourceDir == "" {
		sub, err := fs.Sub(defaultTemplates, "templates")
		if err != nil {
			return nil, err
		}
		return NewRendererFS(sub), nil
	}
	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("template source %s: %w", sourceDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template source is not a directory: %s", sourceDir)
	}
	return NewRendererFS(os.DirFS(sourceDir)), nil
}

// NewRendererFS reads templates from fsys.
func NewRendererFS(fsys fs.FS) *Renderer {
	return &Renderer{fsys: fsys, cache: map[string]*template.Template{}}
}

// Render executes the template at name with data.
func (r *Renderer) Render(name string, data any) (string, error) {
	tmpl, err := r.load(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (r *Renderer) load(name string) (*template.Template, error) {
	if cached, ok := r.cache[name]; ok {
		return cached, nil
	}
	tmpl, err := template.New(path.Base(name)).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		ParseFS(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", name, err)
	}
	r.cache[name] = tmpl
	return tmpl, nil
}
