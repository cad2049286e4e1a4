package firebase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCommander struct {
	outputs map[string]string
	fail    map[string]bool
	ran     []string
}

func (f *fakeCommander) Run(_ context.Context, _, name string, args ...string) error {
	line := strings.Join(append([]string{name}, args...), " ")
	f.ran = append(f.ran, line)
	if f.fail[line] {
		return errors.New("exit status 1")
	}
	return nil
}

func (f *fakeCommander) Output(_ context.Context, _, name string, args ...string) ([]byte, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	f.ran = append(f.ran, line)
	if f.fail[line] {
		return nil, errors.New("exit status 1")
	}
	return []byte(f.outputs[line]), nil
}

const projectsJSON = `{
  "status": "success",
  "result": [
    {"projectId": "acme-dev", "displayName": "Acme Dev", "resources": {"locationId": "europe-west1"}},
    {"projectId": "acme-prod", "displayName": "Acme", "resourceLocation": "us-east1"},
    {"projectId": "acme-sandbox", "displayName": "Sandbox"}
  ]
}`

func TestCheckConnection(t *testing.T) {
	tests := []struct {
		name string
		fail map[string]bool
		want error
	}{
		{name: "connected"},
		{name: "no cli", fail: map[string]bool{"firebase --version": true}, want: ErrCLINotInstalled},
		{name: "logged out", fail: map[string]bool{"firebase projects:list": true}, want: ErrNotLoggedIn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProbe(&fakeCommander{fail: tt.fail})
			err := p.CheckConnection(context.Background())
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestProjects(t *testing.T) {
	fake := &fakeCommander{outputs: map[string]string{"firebase projects:list --json": projectsJSON}}
	got, err := NewProbe(fake).Projects(context.Background())
	require.NoError(t, err)

	want := []Project{
		{ID: "acme-dev", DisplayName: "Acme Dev", Region: "europe-west1"},
		{ID: "acme-prod", DisplayName: "Acme", Region: "us-east1"},
		{ID: "acme-sandbox", DisplayName: "Sandbox", Region: "us-central1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("projects mismatch (-want +got):\n%s", diff)
	}
}

func TestLookupProject(t *testing.T) {
	fake := &fakeCommander{outputs: map[string]string{"firebase projects:list --json": projectsJSON}}
	p := NewProbe(fake)

	proj, found, err := p.LookupProject(context.Background(), "acme-prod")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "us-east1", proj.Region)

	_, found, err = p.LookupProject(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestProjectsErrors(t *testing.T) {
	fake := &fakeCommander{outputs: map[string]string{
		"firebase projects:list --json": `{"status": "error", "error": "Failed to authenticate"}`,
	}}
	_, err := NewProbe(fake).Projects(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to authenticate")

	fake.outputs["firebase projects:list --json"] = "not json"
	_, err = NewProbe(fake).Projects(context.Background())
	require.Error(t, err)

	fake.fail = map[string]bool{"firebase projects:list --json": true}
	_, _, err = NewProbe(fake).LookupProject(context.Background(), "acme-dev")
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	fake := &fakeCommander{}
	require.NoError(t, NewProbe(fake).Login(context.Background()))
	assert.Equal(t, []string{"firebase login"}, fake.ran)
}
