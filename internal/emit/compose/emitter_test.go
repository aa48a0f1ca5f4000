// SPDX-License-Identifier: MPL-2.0

package compose

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"deckhand-cli/internal/emit"
	"deckhand-cli/internal/plan"
	"deckhand-cli/pkg/modulefile"
	"deckhand-cli/pkg/registry"
)

type memLoader struct {
	docs map[modulefile.ModuleName]string
}

func (l *memLoader) Load(_ context.Context, name modulefile.ModuleName, version modulefile.Version) ([]byte, error) {
	doc, ok := l.docs[name]
	if !ok {
		return nil, &registry.ContentNotFoundError{Name: name, Version: version, Path: string(name)}
	}
	return []byte(doc), nil
}

const apacheDoc = `name: apache
version: 2.4.62
description: Apache HTTP server
deployment:
  docker: true
dependencies:
  - php
network:
  - port: 80
    protocol: tcp
storage:
  volumes:
    - source: apache_data
      target: /var/www/html
      type: volume
environment:
  - name: APACHE_PORT
    default: "80"
docker:
  image: httpd:2.4
  restart: unless-stopped
  healthcheck:
    test: curl -f http://localhost/ || exit 1
    interval: 30s
    timeout: 5s
    retries: 3
`

const phpDoc = `name: php
version: 8.3.14
description: PHP FastCGI runtime
deployment:
  docker: true
network:
  - port: 9000
    protocol: tcp
docker:
  image: php:8.3-fpm
  resources:
    limits:
      cpus: "1.0"
      memory: 1G
integration:
  provides: [php-runtime]
`

const registryFixture = `modules:
  apache:
    source: https://git.example.com/modules/apache
    version: 2.4.62
    deployment:
      docker: true
  php:
    source: https://git.example.com/modules/php
    version: 8.3.14
    deployment:
      docker: true
`

func fixturePlan(t *testing.T, names ...modulefile.ModuleName) (*plan.DeploymentPlan, *plan.MergedResources) {
	t.Helper()

	reg, err := registry.Parse([]byte(registryFixture), "registry.yml")
	if err != nil {
		t.Fatalf("registry.Parse() unexpected error: %v", err)
	}
	loader := &memLoader{docs: map[modulefile.ModuleName]string{
		"apache": apacheDoc,
		"php":    phpDoc,
	}}

	g, err := plan.Build(context.Background(), names, reg, loader)
	if err != nil {
		t.Fatalf("plan.Build() unexpected error: %v", err)
	}
	p, err := g.Plan(modulefile.TargetDocker)
	if err != nil {
		t.Fatalf("Plan() unexpected error: %v", err)
	}
	merged, err := plan.Merge(p)
	if err != nil {
		t.Fatalf("plan.Merge() unexpected error: %v", err)
	}
	return p, merged
}

func decode(t *testing.T, data []byte) *Document {
	t.Helper()
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("emitted document does not parse: %v", err)
	}
	return &doc
}

func TestEmit_RendersServices(t *testing.T) {
	t.Parallel()

	p, merged := fixturePlan(t, "apache")
	out, err := Emit(p, merged, Options{})
	if err != nil {
		t.Fatalf("Emit() unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte(emit.Header)) {
		t.Error("output must start with the generated-file header")
	}

	doc := decode(t, out)
	if len(doc.Services) != 2 {
		t.Fatalf("got %d services, want 2", len(doc.Services))
	}

	apache := doc.Services["apache"]
	if apache == nil {
		t.Fatal("apache service missing")
	}
	if apache.Image != "httpd:2.4" {
		t.Errorf("apache.Image = %q, want httpd:2.4", apache.Image)
	}
	if !slices.Equal(apache.Ports, []string{"80:80"}) {
		t.Errorf("apache.Ports = %v, want [80:80]", apache.Ports)
	}
	if !slices.Equal(apache.DependsOn, []string{"php"}) {
		t.Errorf("apache.DependsOn = %v, want [php]", apache.DependsOn)
	}
	if len(apache.Volumes) != 1 || apache.Volumes[0].Target != "/var/www/html" {
		t.Errorf("apache.Volumes = %+v, want mount at /var/www/html", apache.Volumes)
	}
	if apache.HealthCheck == nil || apache.HealthCheck.Test[0] != "CMD-SHELL" {
		t.Errorf("apache.HealthCheck = %+v, want CMD-SHELL test", apache.HealthCheck)
	}
	if apache.Labels["deckhand.module"] != "apache" || apache.Labels["deckhand.version"] != "2.4.62" {
		t.Errorf("apache.Labels = %v, want module and version labels", apache.Labels)
	}
}

func TestEmit_HardeningDefaults(t *testing.T) {
	t.Parallel()

	p, merged := fixturePlan(t, "apache")
	doc := decode(t, mustEmit(t, p, merged, Options{}))

	for name, svc := range doc.Services {
		if !slices.Equal(svc.SecurityOpt, []string{"no-new-privileges:true"}) {
			t.Errorf("%s.SecurityOpt = %v, want [no-new-privileges:true]", name, svc.SecurityOpt)
		}
		if !slices.Equal(svc.CapDrop, []string{"ALL"}) {
			t.Errorf("%s.CapDrop = %v, want [ALL]", name, svc.CapDrop)
		}
	}
	// Both fixtures expose ports, so both get the bind capability set back.
	apache := doc.Services["apache"]
	if !slices.Contains(apache.CapAdd, "NET_BIND_SERVICE") {
		t.Errorf("apache.CapAdd = %v, want NET_BIND_SERVICE included", apache.CapAdd)
	}
}

func TestEmit_ResourceDefaultsAndOverrides(t *testing.T) {
	t.Parallel()

	p, merged := fixturePlan(t, "apache")
	doc := decode(t, mustEmit(t, p, merged, Options{}))

	apache := doc.Services["apache"].Deploy.Resources
	if apache.Limits != (ResourceSpec{CPUs: "0.5", Memory: "512M"}) {
		t.Errorf("apache limits = %+v, want defaults", apache.Limits)
	}
	if apache.Reservations != (ResourceSpec{CPUs: "0.25", Memory: "256M"}) {
		t.Errorf("apache reservations = %+v, want defaults", apache.Reservations)
	}

	php := doc.Services["php"].Deploy.Resources
	if php.Limits != (ResourceSpec{CPUs: "1.0", Memory: "1G"}) {
		t.Errorf("php limits = %+v, want declared values", php.Limits)
	}
	if php.Reservations != (ResourceSpec{CPUs: "0.25", Memory: "256M"}) {
		t.Errorf("php reservations = %+v, want defaults when undeclared", php.Reservations)
	}
}

func TestEmit_ServiceDiscoveryEnv(t *testing.T) {
	t.Parallel()

	p, merged := fixturePlan(t, "apache")
	doc := decode(t, mustEmit(t, p, merged, Options{}))

	apache := doc.Services["apache"]
	if got, want := apache.Environment["PHP_RUNTIME_HOST"], "php"; got != want {
		t.Errorf("PHP_RUNTIME_HOST = %q, want %q", got, want)
	}
	if got, want := apache.Environment["PHP_RUNTIME_PORT"], "9000"; got != want {
		t.Errorf("PHP_RUNTIME_PORT = %q, want %q", got, want)
	}
}

func TestEmit_EnvOverrides(t *testing.T) {
	t.Parallel()

	p, merged := fixturePlan(t, "apache")
	doc := decode(t, mustEmit(t, p, merged, Options{
		EnvOverrides: map[string]string{
			"APACHE_PORT": "8080",
			"UNDECLARED":  "ignored",
		},
	}))

	apache := doc.Services["apache"]
	if got, want := apache.Environment["APACHE_PORT"], "8080"; got != want {
		t.Errorf("APACHE_PORT = %q, want override %q", got, want)
	}
	if _, ok := apache.Environment["UNDECLARED"]; ok {
		t.Error("override for an undeclared variable must be ignored")
	}
}

func TestEmit_NetworksAndVolumes(t *testing.T) {
	t.Parallel()

	p, merged := fixturePlan(t, "apache")
	doc := decode(t, mustEmit(t, p, merged, Options{DefaultNetwork: "fleet"}))

	network, ok := doc.Networks["fleet"]
	if !ok {
		t.Fatalf("Networks = %v, want fleet declared", doc.Networks)
	}
	if network.Driver != "bridge" || network.Name != "fleet" {
		t.Errorf("fleet network = %+v, want bridge driver", network)
	}
	for name, svc := range doc.Services {
		if !slices.Contains(svc.Networks, "fleet") {
			t.Errorf("%s.Networks = %v, want fleet joined", name, svc.Networks)
		}
	}

	volume, ok := doc.Volumes["apache_data"]
	if !ok {
		t.Fatalf("Volumes = %v, want apache_data declared", doc.Volumes)
	}
	if volume.Driver != "local" {
		t.Errorf("apache_data.Driver = %q, want local", volume.Driver)
	}
}

func TestEmit_Deterministic(t *testing.T) {
	t.Parallel()

	first, firstMerged := fixturePlan(t, "apache", "php")
	second, secondMerged := fixturePlan(t, "php", "apache")

	a := mustEmit(t, first, firstMerged, Options{})
	b := mustEmit(t, second, secondMerged, Options{})
	if !bytes.Equal(a, b) {
		t.Error("reversed request order must produce byte-identical output")
	}
	c := mustEmit(t, first, firstMerged, Options{})
	if !bytes.Equal(a, c) {
		t.Error("repeated emission must produce byte-identical output")
	}
}

func TestEmit_EmptyPlanFails(t *testing.T) {
	t.Parallel()

	p := &plan.DeploymentPlan{Target: modulefile.TargetDocker}
	_, err := Emit(p, &plan.MergedResources{}, Options{})
	if err == nil {
		t.Fatal("expected EmissionError for an empty plan")
	}
	if !errors.Is(err, emit.ErrEmission) {
		t.Errorf("errors.Is(err, emit.ErrEmission) = false for %v", err)
	}
}

func TestEmit_UDPPortSyntax(t *testing.T) {
	t.Parallel()

	spec := modulefile.PortSpec{Port: 514, Protocol: modulefile.ProtocolUDP}
	if got, want := formatPort(spec), "514:514/udp"; got != want {
		t.Errorf("formatPort = %q, want %q", got, want)
	}
	tcp := modulefile.PortSpec{Port: 80}
	if got, want := formatPort(tcp), "80:80"; got != want {
		t.Errorf("formatPort = %q, want %q", got, want)
	}
}

func TestCapabilityPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"database", "DATABASE"},
		{"web-server", "WEB_SERVER"},
		{"php-runtime", "PHP_RUNTIME"},
		{"cache.l2", "CACHE_L2"},
	}
	for _, tt := range tests {
		if got := capabilityPrefix(tt.in); got != tt.want {
			t.Errorf("capabilityPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func mustEmit(t *testing.T, p *plan.DeploymentPlan, merged *plan.MergedResources, opts Options) []byte {
	t.Helper()
	out, err := Emit(p, merged, opts)
	if err != nil {
		t.Fatalf("Emit() unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(out), emit.Header) {
		t.Fatalf("output missing header: %q", firstLine(out))
	}
	return out
}

func firstLine(b []byte) string {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
