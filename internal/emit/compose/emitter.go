// SPDX-License-Identifier: MPL-2.0

package compose

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"deckhand-cli/internal/emit"
	"deckhand-cli/internal/plan"
	"deckhand-cli/pkg/modulefile"
)

// ArtifactName is the conventional output file name.
const ArtifactName = "docker-compose.yml"

// Hardening applied to every service. Services that expose ports get the
// minimal capability set back so they can bind and drop privileges.
var (
	securityOpts = []string{"no-new-privileges:true"}
	capDropAll   = []string{"ALL"}
	capAddPorts  = []string{"NET_BIND_SERVICE", "SETUID", "SETGID", "DAC_OVERRIDE"}

	defaultLimits       = ResourceSpec{CPUs: "0.5", Memory: "512M"}
	defaultReservations = ResourceSpec{CPUs: "0.25", Memory: "256M"}
)

// Options control the rendering of the Compose document.
type Options struct {
	// DefaultNetwork is the shared bridge network every service joins.
	DefaultNetwork string
	// EnvOverrides replaces module-declared environment defaults by variable
	// name. Overrides for variables no module declares are ignored.
	EnvOverrides map[string]string
}

// Emit renders the plan's docker-capable modules into a Compose document.
// The merged resource set must come from the same plan; it supplies the
// conflict-free volume claims. The returned bytes are the complete artifact,
// header included.
func Emit(p *plan.DeploymentPlan, merged *plan.MergedResources, opts Options) ([]byte, error) {
	if opts.DefaultNetwork == "" {
		opts.DefaultNetwork = "deckhand"
	}

	modules := p.Emittable()
	if len(modules) == 0 {
		return nil, &emit.EmissionError{Artifact: ArtifactName, Reason: "plan contains no docker-capable modules"}
	}

	emittable := make(map[modulefile.ModuleName]*plan.Module, len(modules))
	for _, mod := range modules {
		emittable[mod.Name()] = mod
	}

	doc := &Document{
		Services: make(map[string]*Service, len(modules)),
		Networks: make(map[string]*Network),
		Volumes:  make(map[string]*Volume),
	}

	for _, mod := range modules {
		svc, err := buildService(mod, emittable, opts)
		if err != nil {
			return nil, err
		}
		doc.Services[string(mod.Name())] = svc
	}

	buildNetworks(doc, modules, opts.DefaultNetwork)
	buildVolumes(doc, merged, emittable)

	if len(doc.Networks) == 0 {
		doc.Networks = nil
	}
	if len(doc.Volumes) == 0 {
		doc.Volumes = nil
	}

	var buf bytes.Buffer
	buf.WriteString(emit.Header)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, &emit.EmissionError{Artifact: ArtifactName, Reason: err.Error()}
	}
	if err := enc.Close(); err != nil {
		return nil, &emit.EmissionError{Artifact: ArtifactName, Reason: err.Error()}
	}
	return buf.Bytes(), nil
}

func buildService(mod *plan.Module, emittable map[modulefile.ModuleName]*plan.Module, opts Options) (*Service, error) {
	def := mod.Definition
	if def.Docker == nil {
		return nil, &emit.EmissionError{
			Artifact: ArtifactName,
			Reason:   fmt.Sprintf("module %q is docker-capable but has no docker section", def.Name),
		}
	}

	svc := &Service{
		Image:         def.Docker.Image,
		Build:         def.Docker.Build,
		ContainerName: def.Docker.ContainerName,
		Restart:       def.Docker.Restart,
		SecurityOpt:   securityOpts,
		CapDrop:       capDropAll,
	}

	for _, port := range def.Network {
		svc.Ports = append(svc.Ports, formatPort(port))
	}
	if len(def.Network) > 0 {
		svc.CapAdd = capAddPorts
	}

	for _, vol := range def.Storage.Volumes {
		mount := Mount{Type: vol.Type.OrDefault().String(), Source: vol.Source, Target: vol.Target}
		if mount.Type == string(modulefile.MountTypeTmpfs) {
			mount.Source = ""
		}
		svc.Volumes = append(svc.Volumes, mount)
	}

	svc.Environment = buildEnvironment(mod, emittable, opts.EnvOverrides)

	svc.Networks = append(svc.Networks, opts.DefaultNetwork)
	svc.Networks = append(svc.Networks, def.Docker.Networks...)

	for _, dep := range def.Dependencies {
		if _, ok := emittable[dep]; ok {
			svc.DependsOn = append(svc.DependsOn, string(dep))
		}
	}
	sort.Strings(svc.DependsOn)

	svc.Deploy = buildDeploy(def.Docker.Resources)

	if hc := def.Docker.HealthCheck; hc != nil {
		svc.HealthCheck = &HealthCheck{
			Test:     []string{"CMD-SHELL", hc.Test},
			Interval: string(hc.Interval),
			Timeout:  string(hc.Timeout),
			Retries:  hc.Retries,
		}
	}

	svc.Labels = map[string]string{
		"deckhand.module":  string(def.Name),
		"deckhand.version": string(mod.Entry.Version),
	}
	if def.Description != "" {
		svc.Labels["deckhand.description"] = def.Description
	}

	return svc, nil
}

// buildEnvironment folds a module's declared defaults, the service-discovery
// variables derived from its dependencies' capability tags, and the caller's
// overrides into one map. Overrides only apply to variables the module
// declares.
func buildEnvironment(mod *plan.Module, emittable map[modulefile.ModuleName]*plan.Module, overrides map[string]string) map[string]string {
	env := make(map[string]string)

	for _, v := range mod.Definition.Environment {
		if v.Default != "" {
			env[string(v.Name)] = v.Default
		}
		if value, ok := overrides[string(v.Name)]; ok {
			env[string(v.Name)] = value
		}
	}

	for _, dep := range mod.Definition.Dependencies {
		provider, ok := emittable[dep]
		if !ok {
			continue
		}
		host := string(provider.Name())
		if cn := provider.Definition.Docker.ContainerName; cn != "" {
			host = cn
		}
		for _, capability := range provider.Definition.Integration.Provides {
			prefix := capabilityPrefix(capability)
			env[prefix+"_HOST"] = host
			if len(provider.Definition.Network) > 0 {
				env[prefix+"_PORT"] = strconv.Itoa(provider.Definition.Network[0].Port)
			}
		}
	}

	if len(env) == 0 {
		return nil
	}
	return env
}

// capabilityPrefix turns a capability tag like "web-server" into an
// environment variable prefix like "WEB_SERVER".
func capabilityPrefix(capability string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, capability)
	return strings.ToUpper(mapped)
}

func buildDeploy(limits *modulefile.ResourceLimits) Deploy {
	deploy := Deploy{Resources: Resources{
		Limits:       defaultLimits,
		Reservations: defaultReservations,
	}}
	if limits == nil {
		return deploy
	}
	if !limits.Limits.IsZero() {
		deploy.Resources.Limits = ResourceSpec{CPUs: limits.Limits.CPUs, Memory: limits.Limits.Memory}
	}
	if !limits.Reservations.IsZero() {
		deploy.Resources.Reservations = ResourceSpec{CPUs: limits.Reservations.CPUs, Memory: limits.Reservations.Memory}
	}
	return deploy
}

func formatPort(port modulefile.PortSpec) string {
	mapping := fmt.Sprintf("%d:%d", port.Port, port.Port)
	if proto := port.Protocol.OrDefault(); proto != modulefile.ProtocolTCP {
		mapping += "/" + proto.String()
	}
	return mapping
}

func buildNetworks(doc *Document, modules []*plan.Module, defaultNetwork string) {
	names := map[string]bool{defaultNetwork: true}
	for _, mod := range modules {
		for _, n := range mod.Definition.Docker.Networks {
			names[n] = true
		}
	}
	for name := range names {
		doc.Networks[name] = &Network{
			Driver: "bridge",
			Name:   name,
			Labels: map[string]string{"deckhand.network": "true"},
		}
	}
}

// buildVolumes declares a top-level named volume for every volume-type claim
// made by a module the document actually renders.
func buildVolumes(doc *Document, merged *plan.MergedResources, emittable map[modulefile.ModuleName]*plan.Module) {
	for _, claim := range merged.Volumes {
		if _, ok := emittable[claim.Module]; !ok {
			continue
		}
		if claim.Mount.Type.OrDefault() != modulefile.MountTypeVolume {
			continue
		}
		doc.Volumes[claim.Mount.Source] = &Volume{
			Driver: "local",
			Labels: map[string]string{"deckhand.volume": "true"},
		}
	}
}
