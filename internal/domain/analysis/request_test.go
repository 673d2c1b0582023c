package analysis

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"

	"glamai-server-go/internal/platform/config"
)

func testBuilder() *Builder {
	cfg := config.DefaultConfig()
	return NewBuilder(&cfg.Analysis)
}

func TestBuildIsDeterministic(t *testing.T) {
	builder := testBuilder()

	for _, kind := range Kinds() {
		first, err := builder.Build(kind, "ZmFrZWpwZWc=")
		if err != nil {
			t.Fatalf("Build(%s) returned error: %v", kind, err)
		}
		second, err := builder.Build(kind, "ZmFrZWpwZWc=")
		if err != nil {
			t.Fatalf("Build(%s) returned error: %v", kind, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Build(%s) is not deterministic", kind)
		}
	}
}

func TestBuildRequestShape(t *testing.T) {
	builder := testBuilder()

	request, err := builder.Build(KindFace, "ZmFrZWpwZWc=")
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if request.MaxTokens != 2500 {
		t.Errorf("expected max_tokens 2500, got %d", request.MaxTokens)
	}
	if request.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %f", request.Temperature)
	}
	if request.ResponseFormat == nil || request.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Error("expected json_object response format")
	}

	if len(request.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(request.Messages))
	}

	system := request.Messages[0]
	if system.Role != openai.ChatMessageRoleSystem {
		t.Errorf("expected system role first, got %s", system.Role)
	}
	if !strings.Contains(system.Content, "Glam AI") {
		t.Error("face request should carry the makeup artist instruction")
	}

	user := request.Messages[1]
	if user.Role != openai.ChatMessageRoleUser {
		t.Errorf("expected user role second, got %s", user.Role)
	}
	if len(user.MultiContent) != 2 {
		t.Fatalf("expected 2 user content parts, got %d", len(user.MultiContent))
	}
	if user.MultiContent[0].Type != openai.ChatMessagePartTypeText {
		t.Error("first user part should be the text directive")
	}
	if !strings.Contains(user.MultiContent[0].Text, "valid JSON object") {
		t.Error("user directive should mandate JSON-only output")
	}
	imagePart := user.MultiContent[1]
	if imagePart.Type != openai.ChatMessagePartTypeImageURL {
		t.Error("second user part should be the image")
	}
	if imagePart.ImageURL.URL != "data:image/jpeg;base64,ZmFrZWpwZWc=" {
		t.Errorf("unexpected image data URI: %q", imagePart.ImageURL.URL)
	}
}

func TestBuildBodyUsesStylistInstruction(t *testing.T) {
	builder := testBuilder()

	request, err := builder.Build(KindBody, "ZmFrZWpwZWc=")
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if !strings.Contains(request.Messages[0].Content, "Style Savvy AI") {
		t.Error("body request should carry the personal stylist instruction")
	}
	if !strings.Contains(request.Messages[0].Content, "isWholeBodyVisible") {
		t.Error("body instruction must mandate the visibility check")
	}
}

func TestBuildRejectsEmptyImage(t *testing.T) {
	if _, err := testBuilder().Build(KindFace, ""); err == nil {
		t.Fatal("expected error for empty encoded image")
	}
}

func TestBuildRejectsUnknownKind(t *testing.T) {
	if _, err := testBuilder().Build(Kind("aura"), "ZmFrZWpwZWc="); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
