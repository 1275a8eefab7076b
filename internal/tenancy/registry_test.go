package tenancy

import (
	"errors"
	"testing"
)

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	err := r.register(descriptor{Name: "projects", Class: TenantScoped, Column: "organization_id"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if !r.IsRegistered("projects") {
		t.Error("projects should be registered")
	}

	if r.Classification("projects") != TenantScoped {
		t.Errorf("expected tenant-scoped, got %s", r.Classification("projects"))
	}

	// Same classification again is a no-op.
	err = r.register(descriptor{Name: "projects", Class: TenantScoped, Column: "organization_id"})
	if err != nil {
		t.Fatalf("idempotent register failed: %v", err)
	}

	// Conflicting classification is rejected.
	err = r.register(descriptor{Name: "projects", Class: SystemScoped})
	if err == nil {
		t.Fatal("expected incompatibility error")
	}

	var incompatible *IncompatibilityError
	if !errors.As(err, &incompatible) {
		t.Fatalf("expected IncompatibilityError, got %T", err)
	}

	if incompatible.Entity != "projects" {
		t.Errorf("expected entity projects, got %s", incompatible.Entity)
	}
}

func TestRegistrySummary(t *testing.T) {
	r := NewRegistry()

	for _, desc := range []descriptor{
		{Name: "projects", Class: TenantScoped, Column: "organization_id"},
		{Name: "roles", Class: SystemScoped},
		{Name: "memberships", Class: TenantScoped, Column: "organization_id"},
		{Name: "audit_logs", Class: Excluded},
	} {
		if err := r.register(desc); err != nil {
			t.Fatalf("register %s failed: %v", desc.Name, err)
		}
	}

	summary := r.Summary()

	if summary.Total != 4 {
		t.Errorf("expected total 4, got %d", summary.Total)
	}

	if len(summary.TenantScoped) != 2 || summary.TenantScoped[0] != "projects" || summary.TenantScoped[1] != "memberships" {
		t.Errorf("unexpected tenant-scoped entities: %v", summary.TenantScoped)
	}

	if len(summary.SystemScoped) != 1 || summary.SystemScoped[0] != "roles" {
		t.Errorf("unexpected system-scoped entities: %v", summary.SystemScoped)
	}

	if len(summary.Excluded) != 1 || summary.Excluded[0] != "audit_logs" {
		t.Errorf("unexpected excluded entities: %v", summary.Excluded)
	}
}

func TestClassificationString(t *testing.T) {
	cases := map[Classification]string{
		TenantScoped:          "tenant-scoped",
		SystemScoped:          "system-scoped",
		Excluded:              "excluded",
		ClassificationUnknown: "unknown",
	}

	for class, want := range cases {
		if class.String() != want {
			t.Errorf("expected %s, got %s", want, class.String())
		}
	}
}
