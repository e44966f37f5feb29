package main

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ironsheep/cardsight/internal/calibration"
	"github.com/ironsheep/cardsight/internal/debugsink"
	"github.com/ironsheep/cardsight/internal/recognition"
)

func TestPipeline_DebugSink_None(t *testing.T) {
	p := &pipeline{}
	sink, err := p.debugSink()
	if err != nil {
		t.Fatalf("debugSink failed: %v", err)
	}
	if sink != nil {
		t.Errorf("sink: got %T, want nil without debug settings", sink)
	}
	p.Close()
}

func TestPipeline_DebugSink_DirAndArchive(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "crops.db")
	p := &pipeline{settings: calibration.Settings{DebugDir: dir, DebugDB: dbPath}}

	sink, err := p.debugSink()
	if err != nil {
		t.Fatalf("debugSink failed: %v", err)
	}
	crop := recognition.DebugCrop{
		Slot: recognition.SlotLeft,
		Time: time.Now(),
		Card: image.NewRGBA(image.Rect(0, 0, 40, 60)),
	}
	if err := sink.Submit(crop); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if p.archive == nil {
		t.Error("archive: got nil, want the archive kept for debug_crops")
	}

	// Close drains the queue before closing the archive.
	p.Close()
	p.Close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("debug dir: got %d files, want 1", len(entries))
	}

	archive, err := debugsink.NewArchive(dbPath)
	if err != nil {
		t.Fatalf("NewArchive failed: %v", err)
	}
	defer archive.Close()
	if n, err := archive.Count(); err != nil || n != 1 {
		t.Errorf("archive count: got %d, %v, want 1", n, err)
	}
}

func TestCommunityNames(t *testing.T) {
	table := &recognition.TableResult{Order: []string{"left", "right", "comm_1", "comm_2"}}
	got := communityNames(table)
	if len(got) != 2 || got[0] != "comm_1" || got[1] != "comm_2" {
		t.Errorf("communityNames: got %v, want [comm_1 comm_2]", got)
	}
}
