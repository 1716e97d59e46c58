package command

import "testing"

func TestCommand_Names(t *testing.T) {
	tests := []struct {
		cmd      Command
		expected string
	}{
		{NewGenerateCode("j1", "hello", "qr", "low"), "GenerateCode"},
		{NewSaveCode("j1", "/tmp/out.png"), "SaveCode"},
		{NewScanFile("j1", "/tmp/in.png", true), "ScanFile"},
		{NewRescanImage("j1", false), "RescanImage"},
		{&Shutdown{}, "Shutdown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.cmd.CommandName(); got != tt.expected {
				t.Errorf("CommandName() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestJobCommand_JobID(t *testing.T) {
	tests := []struct {
		name     string
		cmd      JobCommand
		expected string
	}{
		{"GenerateCode", NewGenerateCode("job-123", "data", "qr", "low"), "job-123"},
		{"SaveCode", NewSaveCode("job-456", "/tmp/out.png"), "job-456"},
		{"ScanFile", NewScanFile("job-789", "/tmp/in.png", false), "job-789"},
		{"RescanImage", NewRescanImage("job-abc", true), "job-abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.JobID(); got != tt.expected {
				t.Errorf("JobID() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGenerateCode_Fields(t *testing.T) {
	cmd := NewGenerateCode("j1", "hello world", "code128", "medium")

	if cmd.Payload != "hello world" {
		t.Errorf("Payload = %v, want hello world", cmd.Payload)
	}
	if cmd.Kind != "code128" {
		t.Errorf("Kind = %v, want code128", cmd.Kind)
	}
	if cmd.ECLevel != "medium" {
		t.Errorf("ECLevel = %v, want medium", cmd.ECLevel)
	}
}

func TestScanFile_Fields(t *testing.T) {
	cmd := NewScanFile("j1", "/data/photo.jpg", true)

	if cmd.Path != "/data/photo.jpg" {
		t.Errorf("Path = %v, want /data/photo.jpg", cmd.Path)
	}
	if !cmd.TryHarder {
		t.Error("TryHarder = false, want true")
	}
}
