// Package firebase asks the firebase CLI about the signed-in account and its
// projects. It backs the interactive environment prompts that link existing
// projects.
package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"shireesh.com/firenext/internal/config"
	xlog "shireesh.com/firenext/internal/log"
)

const cli = "firebase"

var (
	ErrCLINotInstalled = errors.New("firebase CLI is not installed (npm install -g firebase-tools)")
	ErrNotLoggedIn     = errors.New("not logged in to firebase (run: firebase login)")
)

// Commander runs external commands. *hooks.Runner satisfies it.
type Commander interface {
	Run(ctx context.Context, dir, name string, args ...string) error
	Output(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

type Project struct {
	ID          string
	DisplayName string
	Region      string
}

type Probe struct {
	cmd Commander
	log zerolog.Logger
}

func NewProbe(cmd Commander) *Probe {
	return &Probe{cmd: cmd, log: xlog.WithComponent("firebase")}
}

// CheckConnection fails with ErrCLINotInstalled or ErrNotLoggedIn.
func (p *Probe) CheckConnection(ctx context.Context) error {
	if _, err := p.cmd.Output(ctx, "", cli, "--version"); err != nil {
		p.log.Debug().Err(err).Msg("firebase --version failed")
		return ErrCLINotInstalled
	}
	if _, err := p.cmd.Output(ctx, "", cli, "projects:list"); err != nil {
		p.log.Debug().Err(err).Msg("firebase projects:list failed")
		return ErrNotLoggedIn
	}
	return nil
}

// Projects lists the projects visible to the signed-in account.
func (p *Probe) Projects(ctx context.Context) ([]Project, error) {
	out, err := p.cmd.Output(ctx, "", cli, "projects:list", "--json")
	if err != nil {
		return nil, fmt.Errorf("listing firebase projects: %w", err)
	}
	return parseProjects(out)
}

// LookupProject reports whether id is one of the account's projects. Projects
// without a known location get config.DefaultRegion.
func (p *Probe) LookupProject(ctx context.Context, id string) (Project, bool, error) {
	projects, err := p.Projects(ctx)
	if err != nil {
		return Project{}, false, err
	}
	for _, proj := range projects {
		if proj.ID == id {
			return proj, true, nil
		}
	}
	return Project{}, false, nil
}

// Login runs the interactive "firebase login".
func (p *Probe) Login(ctx context.Context) error {
	return p.cmd.Run(ctx, "", cli, "login")
}

type listResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Result []struct {
		ProjectID        string `json:"projectId"`
		DisplayName      string `json:"displayName"`
		ResourceLocation string `json:"resourceLocation"`
		Resources        struct {
			LocationID string `json:"locationId"`
		} `json:"resources"`
	} `json:"result"`
}

func parseProjects(data []byte) ([]Project, error) {
	var resp listResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding firebase projects: %w", err)
	}
	if resp.Status != "" && resp.Status != "success" {
		return nil, fmt.Errorf("firebase projects:list: %s", resp.Error)
	}

	projects := make([]Project, 0, len(resp.Result))
	for _, r := range resp.Result {
		region := r.Resources.LocationID
		if region == "" {
			region = r.ResourceLocation
		}
		if region == "" {
			region = config.DefaultRegion
		}
		projects = append(projects, Project{ID: r.ProjectID, DisplayName: r.DisplayName, Region: region})
	}
	return projects, nil
}
