package enums

import "testing"

func TestActivityKindCategory(t *testing.T) {
	cases := map[ActivityKind]ActivityCategory{
		ActivityKindItemAdd:    ActivityCategoryInventory,
		ActivityKindItemRemove: ActivityCategoryInventory,
		ActivityKindDeposit:    ActivityCategoryFinancial,
		ActivityKindWithdrawal: ActivityCategoryFinancial,
	}
	for kind, want := range cases {
		if got := kind.Category(); got != want {
			t.Fatalf("%s: expected %s got %s", kind, want, got)
		}
	}
	if ActivityKind("transfer").Category() != "" {
		t.Fatal("unknown kind should have no category")
	}
}

func TestParsers(t *testing.T) {
	if _, err := ParseActivityKind("deposit"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseActivityKind("gift"); err == nil {
		t.Fatal("expected invalid kind error")
	}
	if role, err := ParseWorkerRole(" Gerente "); err != nil || role != WorkerRoleManager {
		t.Fatalf("expected manager role, got %q err=%v", role, err)
	}
	if _, err := ParseServiceType("fishing"); err == nil {
		t.Fatal("expected invalid service type")
	}
	if c, err := ParseAbuseCategory("unreturned-tool"); err != nil || !c.IsValid() {
		t.Fatalf("unexpected parse result %q err=%v", c, err)
	}
	if AbuseDecision("maybe").IsValid() {
		t.Fatal("unexpected valid decision")
	}
}
