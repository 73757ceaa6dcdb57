package filter

import (
	"context"
	"sync"

	"github.com/mikey/email-triage/internal/core"
)

type fakeTriager struct {
	mu      sync.Mutex
	raws    []string
	result  core.ClassificationResult
	panicOn string
}

func (f *fakeTriager) Classify(_ context.Context, raw string) (core.ClassificationResult, bool) {
	f.mu.Lock()
	f.raws = append(f.raws, raw)
	f.mu.Unlock()

	if f.panicOn != "" && raw == f.panicOn {
		panic("boom")
	}
	if core.Normalize(raw) == "" {
		return core.ClassificationResult{
			Category:    core.CategoryUndetermined,
			Reply:       core.ReplyEmptyInput,
			Source:      core.SourceNone,
			RuleApplied: core.RuleEmptyInput,
		}, true
	}
	return f.result, false
}

func (f *fakeTriager) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.raws...)
}

type fakeExtractor struct {
	filename string
	data     []byte
}

func (f *fakeExtractor) Extract(data []byte, filename string) string {
	f.filename = filename
	f.data = data
	return "extracted: " + string(data)
}

var actionableResult = core.ClassificationResult{
	Category:    core.CategoryActionable,
	Reply:       "Vamos verificar.",
	Source:      core.SourceRemoteModel,
	RuleApplied: core.RuleModel,
}
