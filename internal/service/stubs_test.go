package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ai-contract-review-be/internal/entity"
	"ai-contract-review-be/internal/repository/contract"
	"ai-contract-review-be/internal/repository/specification"
	"ai-contract-review-be/internal/repository/unitofwork"
	"ai-contract-review-be/pkg/llm"

	"github.com/google/uuid"
)

// In-memory repository doubles. They interpret the specification types the
// services actually use instead of building SQL.

type fakeContractRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*entity.Contract
	// status transitions observed, in order
	transitions []string
}

func newFakeContractRepo() *fakeContractRepo {
	return &fakeContractRepo{items: map[uuid.UUID]*entity.Contract{}}
}

func (r *fakeContractRepo) Create(ctx context.Context, c *entity.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.items[c.Id] = &cp
	return nil
}

func (r *fakeContractRepo) Update(ctx context.Context, c *entity.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.items[c.Id] = &cp
	return nil
}

func (r *fakeContractRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeContractRepo) match(c *entity.Contract, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if c.Id != sp.ID {
				return false
			}
		case specification.OwnedBy:
			if c.UserId != sp.UserID {
				return false
			}
		case specification.ByStatus:
			if c.Status != sp.Status {
				return false
			}
		}
	}
	return true
}

func (r *fakeContractRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if r.match(c, specs) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeContractRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Contract
	for _, c := range r.items {
		if r.match(c, specs) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeContractRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeContractRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil
	}
	if c.Status == entity.AnalysisStatusDone || c.Status == entity.AnalysisStatusError {
		return nil
	}
	c.Status = status
	r.transitions = append(r.transitions, status)
	return nil
}

func (r *fakeContractRepo) SetError(ctx context.Context, id uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil
	}
	if c.Status == entity.AnalysisStatusDone || c.Status == entity.AnalysisStatusError {
		return nil
	}
	c.Status = entity.AnalysisStatusError
	c.ErrorReason = reason
	r.transitions = append(r.transitions, entity.AnalysisStatusError)
	return nil
}

type fakeAnalysisRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*entity.Analysis // keyed by analysis id
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{items: map[uuid.UUID]*entity.Analysis{}}
}

func (r *fakeAnalysisRepo) Create(ctx context.Context, a *entity.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.items[a.Id] = &cp
	return nil
}

func (r *fakeAnalysisRepo) DeleteByContractId(ctx context.Context, contractId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.items {
		if a.ContractId == contractId {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *fakeAnalysisRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.items {
		keep := true
		for _, s := range specs {
			if sp, ok := s.(specification.ByContractID); ok && a.ContractId != sp.ContractID {
				keep = false
			}
		}
		if keep {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAnalysisRepo) FindLatestByContractId(ctx context.Context, contractId uuid.UUID) (*entity.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *entity.Analysis
	for _, a := range r.items {
		if a.ContractId != contractId {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

type fakeChunkRepo struct {
	mu    sync.Mutex
	items []*entity.AnalysisChunk
}

func (r *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.AnalysisChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range chunks {
		cp := *c
		r.items = append(r.items, &cp)
	}
	return nil
}

func (r *fakeChunkRepo) DeleteByAnalysisId(ctx context.Context, analysisId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	for _, c := range r.items {
		if c.AnalysisId != analysisId {
			kept = append(kept, c)
		}
	}
	r.items = kept
	return nil
}

func (r *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalysisChunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.AnalysisChunk, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

type fakeChatRepo struct {
	mu    sync.Mutex
	items []*entity.ChatMessage
}

func (r *fakeChatRepo) Create(ctx context.Context, m *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.items = append(r.items, &cp)
	return nil
}

func (r *fakeChatRepo) DeleteByContractId(ctx context.Context, contractId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	for _, m := range r.items {
		if m.ContractId != contractId {
			kept = append(kept, m)
		}
	}
	r.items = kept
	return nil
}

func (r *fakeChatRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ChatMessage
	for _, m := range r.items {
		keep := true
		for _, s := range specs {
			if sp, ok := s.(specification.ByContractID); ok && m.ContractId != sp.ContractID {
				keep = false
			}
		}
		if keep {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeChatRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: map[uuid.UUID]*entity.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.items[u.Id] = &cp
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *entity.User) error {
	return r.Create(ctx, u)
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		ok := true
		for _, s := range specs {
			switch sp := s.(type) {
			case specification.ByID:
				if u.Id != sp.ID {
					ok = false
				}
			case specification.ByEmail:
				if u.Email != sp.Email {
					ok = false
				}
			}
		}
		if ok {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

// fakeUow satisfies unitofwork.UnitOfWork with the in-memory repos above.
type fakeUow struct {
	contracts *fakeContractRepo
	analyses  *fakeAnalysisRepo
	chunks    *fakeChunkRepo
	chats     *fakeChatRepo
	users     *fakeUserRepo

	mu        sync.Mutex
	begins    int
	commits   int
	rollbacks int
}

func newFakeUow() *fakeUow {
	return &fakeUow{
		contracts: newFakeContractRepo(),
		analyses:  newFakeAnalysisRepo(),
		chunks:    &fakeChunkRepo{},
		chats:     &fakeChatRepo{},
		users:     newFakeUserRepo(),
	}
}

func (u *fakeUow) Begin(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.begins++
	return nil
}

func (u *fakeUow) Commit() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.commits++
	return nil
}

func (u *fakeUow) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.rollbacks++
	return nil
}

func (u *fakeUow) UserRepository() contract.UserRepository                   { return u.users }
func (u *fakeUow) ContractRepository() contract.ContractRepository           { return u.contracts }
func (u *fakeUow) AnalysisRepository() contract.AnalysisRepository           { return u.analyses }
func (u *fakeUow) AnalysisChunkRepository() contract.AnalysisChunkRepository { return u.chunks }
func (u *fakeUow) ChatMessageRepository() contract.ChatMessageRepository     { return u.chats }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// stubEmbedder returns deterministic vectors. Texts containing the word
// "salary" point along the query axis so they rank first.
type stubEmbedder struct {
	mu        sync.Mutex
	manyCalls int
	oneCalls  int
	fail      error
}

func (s *stubEmbedder) vector(text string) []float32 {
	if strings.Contains(strings.ToLower(text), "salary") {
		return []float32{1, 0, 0}
	}
	return []float32{0, 1, 0}
}

func (s *stubEmbedder) EmbedOne(ctx context.Context, text string, taskType string) ([]float32, error) {
	s.mu.Lock()
	s.oneCalls++
	s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	return []float32{1, 0, 0}, nil
}

func (s *stubEmbedder) EmbedMany(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	s.mu.Lock()
	s.manyCalls++
	s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.vector(t)
	}
	return out, nil
}

// stubLLM implements llm.Provider with canned responses.
type stubLLM struct {
	chatResponse string
	chatErr      error

	streamDeltas []string
	streamErr    error
	// fail after this many deltas when streamErr is set; -1 fails before any
	failAfter int

	// history passed to the most recent ChatStream call
	lastHistory []llm.Message
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if s.chatErr != nil {
		return "", s.chatErr
	}
	return s.chatResponse, nil
}

func (s *stubLLM) ChatStream(ctx context.Context, history []llm.Message, onDelta func(string) error, options ...llm.Option) (string, error) {
	s.lastHistory = history
	if s.streamErr != nil && s.failAfter < 0 {
		return "", s.streamErr
	}
	var full strings.Builder
	for i, d := range s.streamDeltas {
		if s.streamErr != nil && i == s.failAfter {
			return "", s.streamErr
		}
		if err := onDelta(d); err != nil {
			return "", err
		}
		full.WriteString(d)
	}
	return full.String(), nil
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
}
