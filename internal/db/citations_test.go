package db

import (
	"context"
	"testing"

	"brandwatch/internal/models"
)

func TestInsertPendingCitation_DoesNotClobber(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	brand := createTestBrand(t, db, "Acme", models.CategorySoftware)

	live := &models.Citation{
		BrandID:   brand.ID,
		AIModel:   models.AIModelChatGPT,
		Query:     "What is Acme?",
		Mentioned: true,
		Context:   "Acme is a tool",
		Date:      "2024-05-01",
	}
	if err := db.UpsertCitation(ctx, live); err != nil {
		t.Fatalf("UpsertCitation() error = %v", err)
	}

	created, err := db.InsertPendingCitation(ctx, brand.ID, models.AIModelChatGPT, "What is Acme?", "2024-05-01")
	if err != nil {
		t.Fatalf("InsertPendingCitation() error = %v", err)
	}
	if created {
		t.Error("InsertPendingCitation() created a row over an existing one")
	}

	got, err := db.GetCitationByID(ctx, live.ID)
	if err != nil {
		t.Fatalf("GetCitationByID() error = %v", err)
	}
	if !got.Mentioned || got.Status != models.CitationChecked {
		t.Errorf("existing citation clobbered: %+v", got)
	}
	if got.AIModelDisplay != "ChatGPT" {
		t.Errorf("AIModelDisplay = %q, want ChatGPT", got.AIModelDisplay)
	}
}

func TestUpsertCitation_ReplacesPending(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	brand := createTestBrand(t, db, "Acme", models.CategorySoftware)

	created, err := db.InsertPendingCitation(ctx, brand.ID, models.AIModelGemini, "Tell me about Acme", "2024-05-01")
	if err != nil || !created {
		t.Fatalf("InsertPendingCitation() = %v, %v", created, err)
	}

	c := &models.Citation{
		BrandID:   brand.ID,
		AIModel:   models.AIModelGemini,
		Query:     "Tell me about Acme",
		Mentioned: true,
		Context:   "...Acme...",
		Date:      "2024-05-01",
	}
	if err := db.UpsertCitation(ctx, c); err != nil {
		t.Fatalf("UpsertCitation() error = %v", err)
	}

	total, mentioned, err := db.CountMentions(ctx, CitationFilter{BrandID: &brand.ID})
	if err != nil {
		t.Fatalf("CountMentions() error = %v", err)
	}
	if total != 1 || mentioned != 1 {
		t.Errorf("CountMentions() = %d, %d, want 1, 1", total, mentioned)
	}
}

func TestCountMentionsByModel(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	brand := createTestBrand(t, db, "Acme", models.CategorySoftware)

	for _, c := range []models.Citation{
		{BrandID: brand.ID, AIModel: models.AIModelGemini, Query: "q1", Mentioned: true},
		{BrandID: brand.ID, AIModel: models.AIModelGemini, Query: "q2", Mentioned: false},
		{BrandID: brand.ID, AIModel: models.AIModelClaude, Query: "q1", Mentioned: true},
	} {
		if err := db.UpsertCitation(ctx, &c); err != nil {
			t.Fatalf("UpsertCitation() error = %v", err)
		}
	}

	counts, err := db.CountMentionsByModel(ctx, CitationFilter{})
	if err != nil {
		t.Fatalf("CountMentionsByModel() error = %v", err)
	}
	if len(counts) != 2 || counts[0].AIModel != models.AIModelGemini || counts[0].Total != 2 || counts[0].Mentioned != 1 {
		t.Errorf("counts = %+v", counts)
	}

	slices, err := db.MentionsByModel(ctx)
	if err != nil {
		t.Fatalf("MentionsByModel() error = %v", err)
	}
	if len(slices) != 2 {
		t.Errorf("len(slices) = %d, want 2", len(slices))
	}
}
