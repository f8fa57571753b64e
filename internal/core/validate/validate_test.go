package validate

import (
	"testing"
)

func TestTopicName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid name", "yolo-models", false},
		{"valid with spaces", "startup strategy", false},
		{"surrounding spaces", "  ear-biometrics  ", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"only tabs", "\t\t", true},
		{"line break", "one\ntwo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TopicName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("TopicName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestChatInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"question", "what is yolo?", false},
		{"empty", "", true},
		{"whitespace", " \n\t ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ChatInput(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ChatInput(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
