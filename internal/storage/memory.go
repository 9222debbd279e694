package storage

import (
	"sort"
	"sync"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// MemoryStore keeps everything in process. It backs development and tests:
// unlike a discard-everything stub, deferred tasks and callbacks written here
// can be read back, so retry scheduling works without DynamoDB.
type MemoryStore struct {
	mu        sync.RWMutex
	calls     map[string]map[string]types.CallRecord     // dateKey -> callID
	leads     map[string]map[string]types.LeadRecord     // leadID -> recordKey
	handoffs  map[string]map[string]types.HandoffRecord  // leadID -> recordKey
	tasks     map[string]map[string]types.DeferredTask   // dueDate -> taskKey
	callbacks map[string]map[string]types.CallbackRecord // leadID -> callbackID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		calls:     make(map[string]map[string]types.CallRecord),
		leads:     make(map[string]map[string]types.LeadRecord),
		handoffs:  make(map[string]map[string]types.HandoffRecord),
		tasks:     make(map[string]map[string]types.DeferredTask),
		callbacks: make(map[string]map[string]types.CallbackRecord),
	}
}

func (s *MemoryStore) SaveCallRecord(record types.CallRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls[record.DateKey] == nil {
		s.calls[record.DateKey] = make(map[string]types.CallRecord)
	}
	s.calls[record.DateKey][record.CallID] = record
	return nil
}

func (s *MemoryStore) GetCallRecords(dateKey string) ([]types.CallRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	partition := s.calls[dateKey]
	if len(partition) == 0 {
		return nil, nil
	}
	records := make([]types.CallRecord, 0, len(partition))
	for _, r := range partition {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CallID < records[j].CallID })
	return records, nil
}

func (s *MemoryStore) GetLeadCallsByDate(leadID, dateKey string) ([]types.CallRecord, error) {
	records, err := s.GetCallRecords(dateKey)
	if err != nil {
		return nil, err
	}
	var out []types.CallRecord
	for _, r := range records {
		if r.LeadID == leadID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) SaveLead(record types.LeadRecord) error {
	if record.RecordKey == "" {
		record.RecordKey = types.LeadProfileKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.leads[record.LeadID] == nil {
		s.leads[record.LeadID] = make(map[string]types.LeadRecord)
	}
	s.leads[record.LeadID][record.RecordKey] = record
	return nil
}

func (s *MemoryStore) GetLead(leadID string) (*types.LeadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.leads[leadID][types.LeadProfileKey]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *MemoryStore) ListLeads() ([]types.LeadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []types.LeadRecord
	for _, rows := range s.leads {
		if record, ok := rows[types.LeadProfileKey]; ok {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].LeadID < records[j].LeadID })
	return records, nil
}

func (s *MemoryStore) SaveHandoff(record types.HandoffRecord) error {
	if record.RecordKey == "" {
		record.RecordKey = types.HandoffKeyPrefix + record.HandoffID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handoffs[record.LeadID] == nil {
		s.handoffs[record.LeadID] = make(map[string]types.HandoffRecord)
	}
	s.handoffs[record.LeadID][record.RecordKey] = record
	return nil
}

func (s *MemoryStore) GetHandoffs(leadID string) ([]types.HandoffRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	partition := s.handoffs[leadID]
	if len(partition) == 0 {
		return nil, nil
	}
	records := make([]types.HandoffRecord, 0, len(partition))
	for _, r := range partition {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].RecordKey < records[j].RecordKey })
	return records, nil
}

func (s *MemoryStore) SaveDeferredTask(task types.DeferredTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks[task.DueDate] == nil {
		s.tasks[task.DueDate] = make(map[string]types.DeferredTask)
	}
	s.tasks[task.DueDate][task.TaskKey] = task
	return nil
}

func (s *MemoryStore) GetDeferredTasks(dueDate string) ([]types.DeferredTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	partition := s.tasks[dueDate]
	if len(partition) == 0 {
		return nil, nil
	}
	tasks := make([]types.DeferredTask, 0, len(partition))
	for _, t := range partition {
		tasks = append(tasks, t)
	}
	// TaskKey starts with the fixed-width due time, so key order is due order
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].TaskKey < tasks[j].TaskKey })
	return tasks, nil
}

func (s *MemoryStore) DeleteDeferredTask(dueDate, taskKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks[dueDate], taskKey)
	return nil
}

func (s *MemoryStore) SaveCallback(cb types.CallbackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.callbacks[cb.LeadID] == nil {
		s.callbacks[cb.LeadID] = make(map[string]types.CallbackRecord)
	}
	s.callbacks[cb.LeadID][cb.CallbackID] = cb
	return nil
}

func (s *MemoryStore) GetCallbacks(leadID string) ([]types.CallbackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	partition := s.callbacks[leadID]
	if len(partition) == 0 {
		return nil, nil
	}
	callbacks := make([]types.CallbackRecord, 0, len(partition))
	for _, cb := range partition {
		callbacks = append(callbacks, cb)
	}
	sort.Slice(callbacks, func(i, j int) bool { return callbacks[i].CallbackID < callbacks[j].CallbackID })
	return callbacks, nil
}

func (s *MemoryStore) TruncateAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]map[string]types.CallRecord)
	s.leads = make(map[string]map[string]types.LeadRecord)
	s.handoffs = make(map[string]map[string]types.HandoffRecord)
	s.tasks = make(map[string]map[string]types.DeferredTask)
	s.callbacks = make(map[string]map[string]types.CallbackRecord)
	return nil
}
