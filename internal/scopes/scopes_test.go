package scopes

import "testing"

func TestAllScopes(t *testing.T) {
	all := AllScopes(nil)
	if len(all) != len(scopeConfigs) {
		t.Fatalf("expected %d scopes, got %d", len(scopeConfigs), len(all))
	}

	level := ScopeLevelOrganization
	orgScopes := AllScopes(&level)

	for _, scope := range orgScopes {
		found := false

		for _, l := range scope.Levels {
			if l == ScopeLevelOrganization {
				found = true
			}
		}

		if !found {
			t.Errorf("scope %s does not have organization level", scope.Slug)
		}
	}

	for _, scope := range orgScopes {
		if scope.Slug == ScopeWriteOrganizations {
			t.Errorf("write_organizations should be system level only")
		}
	}
}

func TestIsValidScope(t *testing.T) {
	if !IsValidScope("read_projects") {
		t.Error("read_projects should be valid")
	}

	if IsValidScope("launch_missiles") {
		t.Error("unknown scope should be invalid")
	}
}

func TestAllScopesAsStrings(t *testing.T) {
	strs := AllScopesAsStrings()
	if len(strs) != len(scopeConfigs) {
		t.Fatalf("expected %d scope strings, got %d", len(scopeConfigs), len(strs))
	}

	if strs[0] != string(scopeConfigs[0].Slug) {
		t.Errorf("expected %s, got %s", scopeConfigs[0].Slug, strs[0])
	}
}
