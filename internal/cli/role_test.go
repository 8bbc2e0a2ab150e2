package cli

import "testing"

func TestParsePermissionViews(t *testing.T) {
	pairs, err := parsePermissionViews([]string{"can_read:Dashboard", " can_write : Dashboard "})
	if err != nil {
		t.Fatalf("parsePermissionViews() error = %v", err)
	}
	if len(pairs) != 2 || pairs[1] != [2]string{"can_write", "Dashboard"} {
		t.Errorf("parsePermissionViews() = %v", pairs)
	}

	for _, bad := range []string{"can_read", ":Dashboard", "can_read:", ""} {
		if _, err := parsePermissionViews([]string{bad}); err == nil {
			t.Errorf("parsePermissionViews(%q) accepted", bad)
		}
	}
}
