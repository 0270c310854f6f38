package domain

import "testing"

func TestStringList_RoundTripThroughDB(t *testing.T) {
	db := newDomainDB(t)
	if err := db.Create(&User{ID: "t1", FirebaseUID: "fb", Email: "t@x.io", Role: RoleTalent}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	p := &TalentProfile{ID: "tp1", UserID: "t1", Skills: StringList{"Go", "Postgres"}}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	var got TalentProfile
	if err := db.First(&got, "id = ?", "tp1").Error; err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got.Skills) != 2 || got.Skills[0] != "Go" || got.Skills[1] != "Postgres" {
		t.Fatalf("skills = %v", got.Skills)
	}
	if got.Certifications == nil || len(got.Certifications) != 0 {
		t.Fatalf("nil list should read back empty, got %#v", got.Certifications)
	}
}

func TestStringList_ScanRejectsUnknownType(t *testing.T) {
	var l StringList
	if err := l.Scan(42); err == nil {
		t.Fatalf("expected error scanning int")
	}
	if err := l.Scan(""); err != nil || len(l) != 0 {
		t.Fatalf("empty string should scan to empty list, got %v %v", l, err)
	}
}

func TestStringList_Clean(t *testing.T) {
	got := StringList{" go ", "", "  ", "sql"}.Clean()
	if len(got) != 2 || got[0] != "go" || got[1] != "sql" {
		t.Fatalf("Clean() = %v", got)
	}
}
