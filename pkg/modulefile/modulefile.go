// SPDX-License-Identifier: MPL-2.0

package modulefile

import (
	_ "embed"
	"fmt"
)

//go:embed modulefile_schema.cue
var modulefileSchema string

type (
	// DockerConfig is the docker-target section of a module definition:
	// everything the Compose emitter needs to render this module's service.
	DockerConfig struct {
		// Image is the container image reference. Mutually exclusive with Build.
		Image string `json:"image,omitempty"`
		// Build is a build-context path used instead of a pre-built image.
		Build string `json:"build,omitempty"`
		// ContainerName overrides the generated container name.
		ContainerName string `json:"container_name,omitempty"`
		// Restart is the Compose restart policy, e.g. "unless-stopped".
		Restart string `json:"restart,omitempty"`
		// Networks lists additional named networks this service joins. All
		// services always join the shared default network.
		Networks []string `json:"networks,omitempty"`
		// HealthCheck is this module's container health check.
		HealthCheck *DockerHealthCheck `json:"healthcheck,omitempty"`
		// Resources are the deploy-time limits; when absent the emitter
		// applies its hardening defaults.
		Resources *ResourceLimits `json:"resources,omitempty"`
	}

	// AnsibleConfig is the ansible-target section of a module definition.
	AnsibleConfig struct {
		// HealthCheck is the post-provisioning verification for this module.
		HealthCheck *AnsibleHealthCheck `json:"healthcheck,omitempty"`
	}

	// Integration carries advisory metadata used for service discovery and
	// compatibility hints. CompatibleWith is informational only and never an
	// ordering constraint.
	Integration struct {
		// Provides lists capability tags this module offers, e.g. "database".
		Provides []string `json:"provides,omitempty"`
		// CompatibleWith lists modules known to work alongside this one.
		CompatibleWith []ModuleName `json:"compatible_with,omitempty"`
	}

	// Storage groups the per-target storage declarations.
	Storage struct {
		// Directories are created by the ansible target.
		Directories []DirectorySpec `json:"directories,omitempty"`
		// Volumes are mounted by the docker target.
		Volumes []VolumeMount `json:"volumes,omitempty"`
	}

	// ModuleDefinition is the fully-typed form of one module's metadata
	// document, produced exclusively by Parse. Dependencies is always
	// non-nil (possibly empty) so downstream code never needs presence
	// checks.
	ModuleDefinition struct {
		// Name uniquely identifies the module within a registry.
		Name ModuleName `json:"name"`
		// Version is the module's three-component semantic version.
		Version Version `json:"version"`
		// Description is a one-line summary for listings and labels.
		Description string `json:"description,omitempty"`
		// Deployment declares which targets this module supports.
		Deployment DeploymentTargets `json:"deployment"`
		// Platforms is the ansible-target platform matrix.
		Platforms []Platform `json:"platforms,omitempty"`
		// Dependencies lists modules that must be present in the same plan,
		// provisioned before this one.
		Dependencies []ModuleName `json:"dependencies,omitempty"`
		// Network lists the ports this module exposes.
		Network []PortSpec `json:"network,omitempty"`
		// Storage groups directory and volume declarations.
		Storage Storage `json:"storage,omitempty"`
		// Environment lists the variables this module consumes.
		Environment []EnvVar `json:"environment,omitempty"`
		// Docker is the docker-target section; required when the docker
		// target is enabled.
		Docker *DockerConfig `json:"docker,omitempty"`
		// Ansible is the ansible-target section.
		Ansible *AnsibleConfig `json:"ansible,omitempty"`
		// Integration carries capability tags and compatibility hints.
		Integration Integration `json:"integration,omitempty"`

		// FilePath records where the document was read from, for diagnostics.
		// Not part of the document itself.
		FilePath string `json:"-"`
	}
)

// Validate checks the module definition against every structural rule and
// returns all violations found, or nil when the definition is valid. The CUE
// schema already rejects most malformed documents at parse time; this pass
// covers the rules CUE cannot express (self-dependency, shell syntax,
// cross-field requirements) and re-checks the rest for definitions built in
// code.
func (m *ModuleDefinition) Validate() ValidationErrors {
	var errs ValidationErrors

	report := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{
			Field:    field,
			Message:  fmt.Sprintf(format, args...),
			Severity: SeverityError,
		})
	}

	if err := m.Name.Validate(); err != nil {
		report("name", "%v", err)
	}
	if err := m.Version.Validate(); err != nil {
		report("version", "%v", err)
	}

	if !m.Deployment.Any() {
		report("deployment", "at least one deployment target must be enabled")
	}
	if m.Deployment.Ansible && len(m.Platforms) == 0 {
		report("platforms", "must not be empty when the ansible target is enabled")
	}
	if m.Deployment.Docker {
		switch {
		case m.Docker == nil:
			report("docker", "section is required when the docker target is enabled")
		case m.Docker.Image == "" && m.Docker.Build == "":
			report("docker", "either image or build must be set")
		case m.Docker.Image != "" && m.Docker.Build != "":
			report("docker", "image and build are mutually exclusive")
		}
	}

	for i, p := range m.Platforms {
		if err := p.Validate(); err != nil {
			report(fmt.Sprintf("platforms[%d]", i), "%v", err)
		}
	}

	seenDeps := make(map[ModuleName]bool, len(m.Dependencies))
	for i, dep := range m.Dependencies {
		field := fmt.Sprintf("dependencies[%d]", i)
		if err := dep.Validate(); err != nil {
			report(field, "%v", err)
			continue
		}
		if dep == m.Name {
			report(field, "module %q must not depend on itself", m.Name)
		}
		if seenDeps[dep] {
			report(field, "dependency %q declared more than once", dep)
		}
		seenDeps[dep] = true
	}

	seenPorts := make(map[string]bool, len(m.Network))
	for i, port := range m.Network {
		field := fmt.Sprintf("network[%d]", i)
		if err := port.Validate(); err != nil {
			report(field, "%v", err)
			continue
		}
		if seenPorts[port.Key()] {
			report(field, "port %s declared more than once", port.Key())
		}
		seenPorts[port.Key()] = true
	}

	for i, dir := range m.Storage.Directories {
		if err := dir.Validate(); err != nil {
			report(fmt.Sprintf("storage.directories[%d]", i), "%v", err)
		}
	}
	seenTargets := make(map[string]bool, len(m.Storage.Volumes))
	for i, vol := range m.Storage.Volumes {
		field := fmt.Sprintf("storage.volumes[%d]", i)
		if err := vol.Validate(); err != nil {
			report(field, "%v", err)
			continue
		}
		if seenTargets[vol.Target] {
			report(field, "volume target %q declared more than once", vol.Target)
		}
		seenTargets[vol.Target] = true
	}

	seenVars := make(map[EnvVarName]bool, len(m.Environment))
	for i, env := range m.Environment {
		field := fmt.Sprintf("environment[%d]", i)
		if err := env.Validate(); err != nil {
			report(field, "%v", err)
			continue
		}
		if seenVars[env.Name] {
			report(field, "variable %q declared more than once", env.Name)
		}
		seenVars[env.Name] = true
	}

	if m.Docker != nil {
		if m.Docker.HealthCheck != nil {
			if err := m.Docker.HealthCheck.Validate(); err != nil {
				report("docker.healthcheck", "%v", err)
			}
		}
		if m.Docker.Resources != nil {
			if err := m.Docker.Resources.Validate(); err != nil {
				report("docker.resources", "%v", err)
			}
		}
	}
	if m.Ansible != nil && m.Ansible.HealthCheck != nil {
		if err := m.Ansible.HealthCheck.Validate(); err != nil {
			report("ansible.healthcheck", "%v", err)
		}
	}

	for i, name := range m.Integration.CompatibleWith {
		if err := name.Validate(); err != nil {
			report(fmt.Sprintf("integration.compatible_with[%d]", i), "%v", err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Provides reports whether the module offers the given capability tag.
func (m *ModuleDefinition) Provides(capability string) bool {
	for _, tag := range m.Integration.Provides {
		if tag == capability {
			return true
		}
	}
	return false
}

// EnvDefaults returns the module's declared environment defaults as a map,
// excluding variables with no default.
func (m *ModuleDefinition) EnvDefaults() map[EnvVarName]string {
	if len(m.Environment) == 0 {
		return nil
	}
	defaults := make(map[EnvVarName]string)
	for _, env := range m.Environment {
		if env.Default != "" {
			defaults[env.Name] = env.Default
		}
	}
	return defaults
}
