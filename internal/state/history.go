// Package state keeps the history of apply runs so they can be inspected and
// rolled back.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/melih-ucgun/ifprop/internal/core"
)

// TransactionChange is one field a resource changed during a run.
type TransactionChange struct {
	Type      string `json:"type"`   // resource type (ip_interface_properties, ip_interface)
	Name      string `json:"name"`   // resource name
	Target    string `json:"target"` // interface
	Field     string `json:"field"`  // ipv4.mtu, interface
	From      string `json:"from"`
	To        string `json:"to"`
	Absent    bool   `json:"absent,omitempty"` // no value before the change
	Temporary bool   `json:"temporary,omitempty"`
}

// ResourceStatus is the final status of one resource in a run.
type ResourceStatus struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	State  string `json:"state,omitempty"`
	Status string `json:"status"` // success, failed, skipped, reverted
}

// Transaction represents a complete application run
type Transaction struct {
	ID        string              `json:"id"`
	Timestamp string              `json:"timestamp"`
	Host      string              `json:"host,omitempty"`
	Status    string              `json:"status"` // success, failed, reverted
	Changes   []TransactionChange `json:"changes"`
	Resources []ResourceStatus    `json:"resources,omitempty"`
}

// NewTransaction starts a transaction for host.
func NewTransaction(host string) *Transaction {
	return &Transaction{
		ID:        GenerateID(),
		Timestamp: time.Now().Format(time.RFC3339),
		Host:      host,
		Status:    "success",
	}
}

// AddChanges records the changes of one applied resource.
func (tx *Transaction) AddChanges(resType, name string, changes []core.Change) {
	for _, ch := range changes {
		tx.Changes = append(tx.Changes, TransactionChange{
			Type:      resType,
			Name:      name,
			Target:    ch.Target,
			Field:     ch.Field,
			From:      ch.From,
			To:        ch.To,
			Absent:    ch.Absent,
			Temporary: ch.Temporary,
		})
	}
}

// Recorder collects resource statuses from the engine into a transaction.
// It implements core.StateUpdater.
type Recorder struct {
	mu sync.Mutex
	tx *Transaction
}

func NewRecorder(tx *Transaction) *Recorder {
	return &Recorder{tx: tx}
}

func (r *Recorder) UpdateResource(resType, name, targetState, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if status == "failed" {
		r.tx.Status = "failed"
	}
	for i := range r.tx.Resources {
		res := &r.tx.Resources[i]
		if res.Type == resType && res.Name == name {
			res.Status = status
			if targetState != "" {
				res.State = targetState
			}
			return nil
		}
	}
	r.tx.Resources = append(r.tx.Resources, ResourceStatus{
		Type:   resType,
		Name:   name,
		State:  targetState,
		Status: status,
	})
	return nil
}

// HistoryManager manages the persistent history of transactions
type HistoryManager struct {
	HistoryFile string
}

// NewHistoryManager stores history under baseDir, ~/.ifprop by default.
func NewHistoryManager(baseDir string) *HistoryManager {
	if baseDir == "" {
		home, _ := os.UserHomeDir()
		baseDir = filepath.Join(home, ".ifprop")
	}
	return &HistoryManager{
		HistoryFile: filepath.Join(baseDir, "history.json"),
	}
}

// AddTransaction appends a new transaction to the history
func (hm *HistoryManager) AddTransaction(tx Transaction) error {
	history, err := hm.LoadHistory()
	if err != nil {
		return err
	}

	// Dosyaya eklenir, arayüz tersten gösterir.
	history = append(history, tx)
	return hm.saveHistory(history)
}

// SetStatus changes the status of a stored transaction.
func (hm *HistoryManager) SetStatus(id, status string) error {
	history, err := hm.LoadHistory()
	if err != nil {
		return err
	}
	for i := range history {
		if history[i].ID == id {
			history[i].Status = status
			return hm.saveHistory(history)
		}
	}
	return fmt.Errorf("transaction not found: %s", id)
}

// LoadHistory reads the history file
func (hm *HistoryManager) LoadHistory() ([]Transaction, error) {
	data, err := os.ReadFile(hm.HistoryFile)
	if os.IsNotExist(err) {
		return []Transaction{}, nil
	}
	if err != nil {
		return nil, err
	}

	var history []Transaction
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("corrupt history file %s: %w", hm.HistoryFile, err)
	}
	return history, nil
}

// GetTransaction finds a transaction by ID. "last" returns the newest one.
func (hm *HistoryManager) GetTransaction(id string) (*Transaction, error) {
	history, err := hm.LoadHistory()
	if err != nil {
		return nil, err
	}

	if id == "last" && len(history) > 0 {
		return &history[len(history)-1], nil
	}
	for i := range history {
		if history[i].ID == id {
			return &history[i], nil
		}
	}
	return nil, fmt.Errorf("transaction not found: %s", id)
}

func (hm *HistoryManager) saveHistory(history []Transaction) error {
	if err := os.MkdirAll(filepath.Dir(hm.HistoryFile), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(hm.HistoryFile, data, 0644)
}

// GenerateID creates a simple unique ID
func GenerateID() string {
	return fmt.Sprintf("run-%s", time.Now().Format("20060102-150405.000"))
}
