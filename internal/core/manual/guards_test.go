package manual

import "testing"

func strPtr(s string) *string { return &s }

func TestCanCreateManual(t *testing.T) {
	tests := []struct {
		name        string
		ctx         CreateManualContext
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "can create with title only",
			ctx:         CreateManualContext{Title: "来客対応"},
			wantAllowed: true,
		},
		{
			name:        "can create published into existing category",
			ctx:         CreateManualContext{Title: "来客対応", Status: StatusPublished, CategoryID: "CAT-001", CategoryExists: true},
			wantAllowed: true,
		},
		{
			name:        "cannot create without title",
			ctx:         CreateManualContext{Title: " "},
			wantAllowed: false,
			wantReason:  "manual title is required",
		},
		{
			name:        "cannot create with unknown status",
			ctx:         CreateManualContext{Title: "x", Status: "live"},
			wantAllowed: false,
			wantReason:  `invalid status "live"`,
		},
		{
			name:        "cannot create into missing category",
			ctx:         CreateManualContext{Title: "x", CategoryID: "CAT-404"},
			wantAllowed: false,
			wantReason:  "category CAT-404 not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanCreateManual(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestCanUpdateManual(t *testing.T) {
	tests := []struct {
		name        string
		ctx         UpdateManualContext
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "no fields is allowed",
			ctx:         UpdateManualContext{ManualID: "MAN-001"},
			wantAllowed: true,
		},
		{
			name:        "new title and status",
			ctx:         UpdateManualContext{ManualID: "MAN-001", Title: strPtr("新"), Status: strPtr(StatusArchived)},
			wantAllowed: true,
		},
		{
			name:        "blank title rejected",
			ctx:         UpdateManualContext{ManualID: "MAN-001", Title: strPtr("")},
			wantAllowed: false,
			wantReason:  "manual title cannot be empty",
		},
		{
			name:        "bad status rejected",
			ctx:         UpdateManualContext{ManualID: "MAN-001", Status: strPtr("deleted")},
			wantAllowed: false,
			wantReason:  `invalid status "deleted"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanUpdateManual(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestCanLinkCategory(t *testing.T) {
	tests := []struct {
		name        string
		ctx         LinkCategoryContext
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "link without entry point",
			ctx:         LinkCategoryContext{ManualID: "MAN-001", ManualExists: true, CategoryID: "CAT-001", CategoryExists: true},
			wantAllowed: true,
		},
		{
			name:        "link with known entry point",
			ctx:         LinkCategoryContext{ManualID: "MAN-001", ManualExists: true, CategoryID: "CAT-001", CategoryExists: true, EntryPoint: "check", EntryPointExists: true},
			wantAllowed: true,
		},
		{
			name:        "missing manual",
			ctx:         LinkCategoryContext{ManualID: "MAN-404", CategoryID: "CAT-001", CategoryExists: true},
			wantAllowed: false,
			wantReason:  "manual MAN-404 not found",
		},
		{
			name:        "missing category",
			ctx:         LinkCategoryContext{ManualID: "MAN-001", ManualExists: true, CategoryID: "CAT-404"},
			wantAllowed: false,
			wantReason:  "category CAT-404 not found",
		},
		{
			name:        "unknown entry point",
			ctx:         LinkCategoryContext{ManualID: "MAN-001", ManualExists: true, CategoryID: "CAT-001", CategoryExists: true, EntryPoint: "ghost"},
			wantAllowed: false,
			wantReason:  "entry point ghost is not a step of manual MAN-001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanLinkCategory(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestChainRoot(t *testing.T) {
	if got := ChainRoot("MAN-003", "MAN-001"); got != "MAN-001" {
		t.Errorf("ChainRoot = %s, want MAN-001", got)
	}
	if got := ChainRoot("MAN-003", ""); got != "MAN-003" {
		t.Errorf("ChainRoot without parent = %s, want MAN-003", got)
	}
}
