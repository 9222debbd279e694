package storage

import (
	"testing"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

func TestMemoryStoreCallRecords(t *testing.T) {
	s := NewMemoryStore()

	records := []types.CallRecord{
		{DateKey: "2026-08-21", CallID: "call_b", LeadID: "lead_1", FinalState: "completed"},
		{DateKey: "2026-08-21", CallID: "call_a", LeadID: "lead_2", FinalState: "failed"},
		{DateKey: "2026-08-20", CallID: "call_c", LeadID: "lead_1", FinalState: "completed"},
	}
	for _, r := range records {
		if err := s.SaveCallRecord(r); err != nil {
			t.Fatalf("SaveCallRecord: %v", err)
		}
	}

	got, err := s.GetCallRecords("2026-08-21")
	if err != nil {
		t.Fatalf("GetCallRecords: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].CallID != "call_a" || got[1].CallID != "call_b" {
		t.Fatalf("records not in sort-key order: %s, %s", got[0].CallID, got[1].CallID)
	}

	byLead, err := s.GetLeadCallsByDate("lead_1", "2026-08-21")
	if err != nil {
		t.Fatalf("GetLeadCallsByDate: %v", err)
	}
	if len(byLead) != 1 || byLead[0].CallID != "call_b" {
		t.Fatalf("byLead = %+v, want the single lead_1 call", byLead)
	}

	empty, err := s.GetCallRecords("2026-01-01")
	if err != nil || empty != nil {
		t.Fatalf("empty partition: got %v, %v", empty, err)
	}
}

func TestMemoryStoreLeads(t *testing.T) {
	s := NewMemoryStore()

	if err := s.SaveLead(types.LeadRecord{LeadID: "lead_2", Phone: "+911112223334", Status: "pending"}); err != nil {
		t.Fatalf("SaveLead: %v", err)
	}
	if err := s.SaveLead(types.LeadRecord{LeadID: "lead_1", Phone: "+919998887776", Status: "pending"}); err != nil {
		t.Fatalf("SaveLead: %v", err)
	}

	lead, err := s.GetLead("lead_1")
	if err != nil {
		t.Fatalf("GetLead: %v", err)
	}
	if lead == nil || lead.Phone != "+919998887776" {
		t.Fatalf("lead = %+v", lead)
	}
	if lead.RecordKey != types.LeadProfileKey {
		t.Fatalf("recordKey = %q, want %q defaulted on save", lead.RecordKey, types.LeadProfileKey)
	}

	missing, err := s.GetLead("lead_absent")
	if err != nil || missing != nil {
		t.Fatalf("missing lead: got %v, %v", missing, err)
	}

	// update in place
	if err := s.SaveLead(types.LeadRecord{LeadID: "lead_1", Phone: "+919998887776", Status: "qualified"}); err != nil {
		t.Fatalf("SaveLead update: %v", err)
	}
	lead, _ = s.GetLead("lead_1")
	if lead.Status != "qualified" {
		t.Fatalf("status = %q, want qualified", lead.Status)
	}

	all, err := s.ListLeads()
	if err != nil {
		t.Fatalf("ListLeads: %v", err)
	}
	if len(all) != 2 || all[0].LeadID != "lead_1" || all[1].LeadID != "lead_2" {
		t.Fatalf("leads = %+v, want both sorted by id", all)
	}
}

func TestMemoryStoreHandoffs(t *testing.T) {
	s := NewMemoryStore()

	if err := s.SaveHandoff(types.HandoffRecord{LeadID: "lead_1", HandoffID: "handoff_b", CallID: "call_1", Status: "pending"}); err != nil {
		t.Fatalf("SaveHandoff: %v", err)
	}
	if err := s.SaveHandoff(types.HandoffRecord{LeadID: "lead_1", HandoffID: "handoff_a", CallID: "call_2", Status: "transferred"}); err != nil {
		t.Fatalf("SaveHandoff: %v", err)
	}

	got, err := s.GetHandoffs("lead_1")
	if err != nil {
		t.Fatalf("GetHandoffs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].HandoffID != "handoff_a" || got[1].HandoffID != "handoff_b" {
		t.Fatalf("handoffs not in sort-key order: %s, %s", got[0].HandoffID, got[1].HandoffID)
	}
	if got[0].RecordKey != types.HandoffKeyPrefix+"handoff_a" {
		t.Fatalf("recordKey = %q, want prefixed handoff id", got[0].RecordKey)
	}

	// status update in place
	if err := s.SaveHandoff(types.HandoffRecord{LeadID: "lead_1", HandoffID: "handoff_b", CallID: "call_1", Status: "failed"}); err != nil {
		t.Fatalf("SaveHandoff update: %v", err)
	}
	got, err = s.GetHandoffs("lead_1")
	if err != nil || len(got) != 2 {
		t.Fatalf("after update: %v, %v", got, err)
	}
	if got[1].Status != "failed" {
		t.Fatalf("status = %q, want failed", got[1].Status)
	}

	// handoff rows never leak into the lead profile view
	if lead, err := s.GetLead("lead_1"); err != nil || lead != nil {
		t.Fatalf("GetLead sees handoff rows: %v, %v", lead, err)
	}
}

func TestMemoryStoreDeferredTasks(t *testing.T) {
	s := NewMemoryStore()

	tasks := []types.DeferredTask{
		{DueDate: "2026-08-22", TaskKey: "2026-08-22T14:00:00Z#task_2", TaskID: "task_2", Kind: types.TaskRetryDial},
		{DueDate: "2026-08-22", TaskKey: "2026-08-22T09:00:00Z#task_1", TaskID: "task_1", Kind: types.TaskCallbackDial},
	}
	for _, task := range tasks {
		if err := s.SaveDeferredTask(task); err != nil {
			t.Fatalf("SaveDeferredTask: %v", err)
		}
	}

	due, err := s.GetDeferredTasks("2026-08-22")
	if err != nil {
		t.Fatalf("GetDeferredTasks: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("len = %d, want 2", len(due))
	}
	if due[0].TaskID != "task_1" || due[1].TaskID != "task_2" {
		t.Fatalf("tasks not in due order: %s, %s", due[0].TaskID, due[1].TaskID)
	}

	if err := s.DeleteDeferredTask("2026-08-22", "2026-08-22T09:00:00Z#task_1"); err != nil {
		t.Fatalf("DeleteDeferredTask: %v", err)
	}
	due, _ = s.GetDeferredTasks("2026-08-22")
	if len(due) != 1 || due[0].TaskID != "task_2" {
		t.Fatalf("after delete: %+v", due)
	}

	// deleting from an absent partition is a no-op
	if err := s.DeleteDeferredTask("2026-01-01", "nope"); err != nil {
		t.Fatalf("DeleteDeferredTask absent: %v", err)
	}
}

func TestMemoryStoreCallbacks(t *testing.T) {
	s := NewMemoryStore()

	if err := s.SaveCallback(types.CallbackRecord{
		LeadID:      "lead_1",
		CallbackID:  "callback_1",
		ScheduledAt: "2026-08-22T10:00:00Z",
		Status:      types.CallbackScheduled,
	}); err != nil {
		t.Fatalf("SaveCallback: %v", err)
	}

	got, err := s.GetCallbacks("lead_1")
	if err != nil {
		t.Fatalf("GetCallbacks: %v", err)
	}
	if len(got) != 1 || got[0].Status != types.CallbackScheduled {
		t.Fatalf("callbacks = %+v", got)
	}
}

func TestMemoryStoreTruncateAll(t *testing.T) {
	s := NewMemoryStore()
	s.SaveCallRecord(types.CallRecord{DateKey: "2026-08-21", CallID: "call_a"})
	s.SaveLead(types.LeadRecord{LeadID: "lead_1"})
	s.SaveHandoff(types.HandoffRecord{LeadID: "lead_1", HandoffID: "handoff_1"})
	s.SaveDeferredTask(types.DeferredTask{DueDate: "2026-08-22", TaskKey: "k", TaskID: "task_1"})
	s.SaveCallback(types.CallbackRecord{LeadID: "lead_1", CallbackID: "callback_1"})

	if err := s.TruncateAll(); err != nil {
		t.Fatalf("TruncateAll: %v", err)
	}

	if records, _ := s.GetCallRecords("2026-08-21"); records != nil {
		t.Fatalf("call records survived truncate: %+v", records)
	}
	if lead, _ := s.GetLead("lead_1"); lead != nil {
		t.Fatalf("lead survived truncate: %+v", lead)
	}
	if handoffs, _ := s.GetHandoffs("lead_1"); handoffs != nil {
		t.Fatalf("handoffs survived truncate: %+v", handoffs)
	}
	if tasks, _ := s.GetDeferredTasks("2026-08-22"); tasks != nil {
		t.Fatalf("tasks survived truncate: %+v", tasks)
	}
	if callbacks, _ := s.GetCallbacks("lead_1"); callbacks != nil {
		t.Fatalf("callbacks survived truncate: %+v", callbacks)
	}
}
