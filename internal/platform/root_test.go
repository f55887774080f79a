package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindConfig(t *testing.T) {
	// /tmp/
	//   repo/ (.jobboard.yaml)
	//     subdir/
	//       nested/
	//   empty/

	baseDir := t.TempDir()
	repoDir := filepath.Join(baseDir, "repo")
	subDir := filepath.Join(repoDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	emptyDir := filepath.Join(baseDir, "empty")

	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(emptyDir, 0755); err != nil {
		t.Fatal(err)
	}
	marker := filepath.Join(repoDir, ".jobboard.yaml")
	if err := os.WriteFile(marker, []byte("api_url: http://localhost:5000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// Keep the user config dir out of the way.
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(baseDir, "xdg"))
	t.Setenv("HOME", filepath.Join(baseDir, "home"))

	tests := []struct {
		name      string
		startPath string
		want      string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: repoDir, want: marker},
		{name: "Start in Subdir", startPath: subDir, want: marker},
		{name: "Start Nested Deeply", startPath: nestedDir, want: marker},
		{name: "No Config Found", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindConfig(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("FindConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != "" && filepath.Clean(got) != filepath.Clean(tt.want) {
				t.Errorf("FindConfig() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("Falls Back To User Config", func(t *testing.T) {
		userCfg, err := UserConfigPath()
		if err != nil {
			t.Skipf("no user config dir: %v", err)
		}
		if err := os.MkdirAll(filepath.Dir(userCfg), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(userCfg, []byte("api_url: x\n"), 0644); err != nil {
			t.Fatal(err)
		}
		got, err := FindConfig(emptyDir)
		if err != nil {
			t.Fatalf("FindConfig() error = %v", err)
		}
		if got != userCfg {
			t.Errorf("FindConfig() = %v, want %v", got, userCfg)
		}
	})
}
