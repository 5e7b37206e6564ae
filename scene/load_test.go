package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const minimalSceneJSON = `{
	"settings": {
		"image_settings": {"width": 64, "height": 48},
		"background_color": [0.1, 0.2, 0.3]
	},
	"camera": {
		"matrix": [1,0,0, 0,1,0, 0,0,1],
		"position": [0, 0, 5],
		"fov": 1.0471975512
	},
	"lights": [
		{"position": [0, 5, 0], "intensity": 50, "color": [1, 1, 1]}
	],
	"meshes": [
		{
			"vertices": [-1,-1,0, 1,-1,0, 0,1,0],
			"triangles": [0, 1, 2]
		}
	],
	"textures": [
		{"name": "red", "type": "albedo", "color1": [1, 0, 0]}
	],
	"materials": [
		{"type": "diffuse", "albedo": "red"},
		{"type": "reflective", "albedo": [0.2, 0.2, 0.2]}
	],
	"objects": [
		{"ref": 0, "material_index": 0},
		{"ref": 0, "material_index": 1, "transform": [1,0,0,2, 0,1,0,0, 0,0,1,0, 0,0,0,1]}
	]
}`

func writeSceneFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}
	return path
}

func TestLoadParsesMinimalScene(t *testing.T) {
	path := writeSceneFile(t, minimalSceneJSON)
	scn, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(scn.Materials) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(scn.Materials))
	}
	if len(scn.Instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(scn.Instances))
	}
	if len(scn.Lights) != 1 {
		t.Fatalf("expected 1 light, got %d", len(scn.Lights))
	}
	if scn.Camera.Width != 64 || scn.Camera.Height != 48 {
		t.Fatalf("expected camera dimensions 64x48, got %dx%d", scn.Camera.Width, scn.Camera.Height)
	}
	if scn.BackgroundColor[0] != 0.1 || scn.BackgroundColor[1] != 0.2 || scn.BackgroundColor[2] != 0.3 {
		t.Fatalf("expected background color [0.1 0.2 0.3], got %v", scn.BackgroundColor)
	}

	first := scn.Instances[0].Material
	if first.Kind != Diffuse {
		t.Fatalf("expected first material to be diffuse")
	}
	second := scn.Instances[1].Material
	if second.Kind != Reflective {
		t.Fatalf("expected second material to be reflective")
	}
}

func TestLoadResolvesNamedTextureAlbedo(t *testing.T) {
	path := writeSceneFile(t, minimalSceneJSON)
	scn, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scn.Materials[0].Albedo != scn.Textures["red"] {
		t.Fatalf("expected material 0's albedo to resolve to the named texture")
	}
}

func TestLoadResolvesInlineArrayAlbedo(t *testing.T) {
	path := writeSceneFile(t, minimalSceneJSON)
	scn, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scn.Materials[1].Albedo == scn.Textures["red"] {
		t.Fatalf("expected material 1's albedo to be its own constant texture, not the named one")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/scene.json")
	if !errors.Is(err, ErrResource) {
		t.Fatalf("expected ErrResource for a missing file, got %v", err)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeSceneFile(t, "{not valid json")
	_, err := Load(path)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for malformed JSON, got %v", err)
	}
}

func TestLoadRejectsUndefinedTextureReference(t *testing.T) {
	bad := `{
		"settings": {"image_settings": {"width": 4, "height": 4}, "background_color": [0,0,0]},
		"camera": {"matrix": [1,0,0,0,1,0,0,0,1], "position": [0,0,0]},
		"materials": [{"type": "diffuse", "albedo": "missing"}]
	}`
	path := writeSceneFile(t, bad)
	_, err := Load(path)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for an undefined texture reference, got %v", err)
	}
}

func TestLoadRejectsOutOfRangeMaterialIndex(t *testing.T) {
	bad := `{
		"settings": {"image_settings": {"width": 4, "height": 4}, "background_color": [0,0,0]},
		"camera": {"matrix": [1,0,0,0,1,0,0,0,1], "position": [0,0,0]},
		"materials": [{"type": "diffuse", "albedo": [1,1,1]}],
		"meshes": [{"vertices": [0,0,0, 1,0,0, 0,1,0], "triangles": [0,1,2]}],
		"objects": [{"ref": 0, "material_index": 5}]
	}`
	path := writeSceneFile(t, bad)
	_, err := Load(path)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for an out-of-range material index, got %v", err)
	}
}

func TestLoadAcceptsInlineObjectMesh(t *testing.T) {
	withInline := `{
		"settings": {"image_settings": {"width": 4, "height": 4}, "background_color": [0,0,0]},
		"camera": {"matrix": [1,0,0,0,1,0,0,0,1], "position": [0,0,0]},
		"materials": [{"type": "diffuse", "albedo": [1,1,1]}],
		"objects": [
			{"vertices": [0,0,0, 1,0,0, 0,1,0], "triangles": [0,1,2], "material_index": 0}
		]
	}`
	path := writeSceneFile(t, withInline)
	scn, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scn.Instances) != 1 {
		t.Fatalf("expected 1 instance from the inline mesh object, got %d", len(scn.Instances))
	}
	if len(scn.Meshes) != 1 {
		t.Fatalf("expected the inline mesh to be appended to scn.Meshes, got %d", len(scn.Meshes))
	}
}
