package config

import (
	"fmt"
	"strings"
)

const (
	DefaultProjectName = "my-firebase-nextjs-app"
	DefaultDescription = "Modern Firebase + Next.js application"
	DefaultAuthor      = "Your Name <your.email@example.com>"
	DefaultOutputDir   = "./generated-project"
	DefaultRegion      = "us-central1"
	DefaultRuntime     = "nodejs20"
)

// FeatureNames lists the optional features in the order prompts and flags
// present them.
var FeatureNames = []string{"pwa", "fcm", "analytics", "performance", "sentry"}

// Regions are the Firebase locations offered by the prompts. Other values are
// accepted but produce a validation warning.
var Regions = []string{
	"us-central1",
	"us-east1",
	"us-west1",
	"us-west2",
	"europe-west1",
	"europe-west2",
	"europe-west3",
	"asia-east1",
	"asia-northeast1",
	"asia-southeast1",
}

var NextJSVersions = []string{"15", "14"}

// EnvironmentNames are the environments offered by the prompts.
var EnvironmentNames = []string{"dev", "staging", "prod", "local"}

// ExtensionNames are the Firebase extensions offered by the prompts.
var ExtensionNames = []string{"firebase-auth-ui", "firestore-exports", "firebase-storage", "firebase-emulator"}

const defaultRules = `rules_version = '2';
service cloud.firestore {
  match /databases/{database}/documents {
    match /{document=**} {
      allow read, write: if request.auth != null;
    }
  }
}`

// Default returns the options used when nothing else is specified.
func Default() Options {
	return Options{
		Project: Project{
			Name:           DefaultProjectName,
			Description:    DefaultDescription,
			Author:         DefaultAuthor,
			Version:        "1.0.0",
			License:        "MIT",
			PackageManager: NPM,
		},
		Firebase: Firebase{
			Environments: EnvironmentsFor(DefaultProjectName, []string{"dev", "prod"}, DefaultRegion),
			Extensions:   []Extension{},
		},
		NextJS: NextJS{
			Version:         "15",
			AppRouter:       true,
			TypeScript:      true,
			StrictMode:      true,
			UI:              UIMUI,
			StateManagement: StateZustand,
			Features:        Features{PWA: true, Analytics: true},
		},
		CloudFunctions: CloudFunctions{
			Runtime: DefaultRuntime,
			Region:  DefaultRegion,
			Triggers: []Trigger{
				{Name: "userCreated", Type: TriggerAuth, Event: "user.create"},
				{Name: "userDeleted", Type: TriggerAuth, Event: "user.delete"},
			},
			Scheduled: []ScheduledFunction{
				{Name: "dailyCleanup", Schedule: "0 2 * * *", TimeZone: "UTC"},
			},
		},
		Firestore: Firestore{
			Rules:      defaultRules,
			Indexes:    "[]",
			Migrations: []Migration{},
		},
		Themes:    []Theme{defaultTheme()},
		OutputDir: DefaultOutputDir,
	}
}

func defaultTheme() Theme {
	return Theme{Name: "default", Type: "mui", Variables: map[string]string{}, DarkMode: true}
}

// EnvironmentsFor builds one environment per name, each pointing at the
// Firebase project "<prefix>-<name>".
func EnvironmentsFor(prefix string, names []string, region string) []Environment {
	if region == "" {
		region = DefaultRegion
	}
	envs := make([]Environment, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		envs = append(envs, Environment{
			Name:        name,
			ProjectID:   prefix + "-" + name,
			Region:      region,
			Variables:   map[string]string{},
			ProjectType: ProjectGenerate,
		})
	}
	return envs
}

// ParseFeatures turns a comma separated list such as "pwa,fcm" into
// Features. An empty list disables every feature.
func ParseFeatures(csv string) (Features, error) {
	var f Features
	for _, raw := range strings.Split(csv, ",") {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch name {
		case "":
		case "pwa":
			f.PWA = true
		case "fcm":
			f.FCM = true
		case "analytics":
			f.Analytics = true
		case "performance":
			f.Performance = true
		case "sentry":
			f.Sentry = true
		default:
			return Features{}, fmt.Errorf("unknown feature %q (available: %s)", name, strings.Join(FeatureNames, ", "))
		}
	}
	return f, nil
}

// SplitList splits a comma separated flag value, dropping empty items.
func SplitList(csv string) []string {
	var out []string
	for _, item := range strings.Split(csv, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
