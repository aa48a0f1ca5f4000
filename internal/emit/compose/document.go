// SPDX-License-Identifier: MPL-2.0

// Package compose renders a deployment plan into a Docker Compose document.
// The output is fully deterministic: identical plans produce byte-identical
// documents, with mapping keys in sorted order.
package compose

type (
	// Document is the top-level Compose file structure.
	Document struct {
		Services map[string]*Service `yaml:"services"`
		Networks map[string]*Network `yaml:"networks,omitempty"`
		Volumes  map[string]*Volume  `yaml:"volumes,omitempty"`
	}

	// Service is one Compose service definition.
	Service struct {
		Image         string            `yaml:"image,omitempty"`
		Build         string            `yaml:"build,omitempty"`
		ContainerName string            `yaml:"container_name,omitempty"`
		Restart       string            `yaml:"restart,omitempty"`
		Ports         []string          `yaml:"ports,omitempty"`
		Volumes       []Mount           `yaml:"volumes,omitempty"`
		Environment   map[string]string `yaml:"environment,omitempty"`
		Networks      []string          `yaml:"networks,omitempty"`
		DependsOn     []string          `yaml:"depends_on,omitempty"`
		SecurityOpt   []string          `yaml:"security_opt"`
		CapDrop       []string          `yaml:"cap_drop"`
		CapAdd        []string          `yaml:"cap_add,omitempty"`
		Deploy        Deploy            `yaml:"deploy"`
		HealthCheck   *HealthCheck      `yaml:"healthcheck,omitempty"`
		Labels        map[string]string `yaml:"labels"`
	}

	// Mount is a long-form service volume entry.
	Mount struct {
		Type   string `yaml:"type"`
		Source string `yaml:"source,omitempty"`
		Target string `yaml:"target"`
	}

	// HealthCheck is a Compose service health check.
	HealthCheck struct {
		Test     []string `yaml:"test"`
		Interval string   `yaml:"interval,omitempty"`
		Timeout  string   `yaml:"timeout,omitempty"`
		Retries  int      `yaml:"retries,omitempty"`
	}

	// Deploy carries the deploy-time resource constraints.
	Deploy struct {
		Resources Resources `yaml:"resources"`
	}

	// Resources pairs limits with reservations.
	Resources struct {
		Limits       ResourceSpec `yaml:"limits"`
		Reservations ResourceSpec `yaml:"reservations"`
	}

	// ResourceSpec is one CPU/memory constraint pair.
	ResourceSpec struct {
		CPUs   string `yaml:"cpus"`
		Memory string `yaml:"memory"`
	}

	// Network is a top-level network definition.
	Network struct {
		Driver string            `yaml:"driver"`
		Name   string            `yaml:"name"`
		Labels map[string]string `yaml:"labels"`
	}

	// Volume is a top-level named volume definition.
	Volume struct {
		Driver string            `yaml:"driver"`
		Labels map[string]string `yaml:"labels"`
	}
)
