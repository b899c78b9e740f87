package trainer

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
)

type uiModelPersistenceData struct {
	PreferredPlanKey string `json:"preferred_plan_key"`
}

type uiModelPersistence struct {
	filePath string
	logger   *log.Logger

	mu   sync.Mutex
	data uiModelPersistenceData
}

func newUIModelPersistence(dataDir string, logger *log.Logger) *uiModelPersistence {
	p := &uiModelPersistence{
		filePath: filepath.Join(dataDir, "ui_state.json"),
		logger:   logger,
	}
	p.load()
	return p
}

func (p *uiModelPersistence) getPreferredPlan() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.PreferredPlanKey
}

func (p *uiModelPersistence) setPreferredPlan(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data.PreferredPlanKey == key {
		return
	}
	p.logger.Printf("UIModelPersistence: setPreferredPlan %q", key)
	p.data.PreferredPlanKey = key
	p.save()
}

func (p *uiModelPersistence) load() {
	raw, err := os.ReadFile(p.filePath)
	if err != nil {
		p.logger.Printf("UIModelPersistence: load %s (no existing file)", p.filePath)
		return
	}
	if err := json.Unmarshal(raw, &p.data); err != nil {
		p.logger.Printf("UIModelPersistence: load %s failed to parse: %v", p.filePath, err)
		p.data = uiModelPersistenceData{}
		return
	}
	p.logger.Printf("UIModelPersistence: load %s -> plan %q", p.filePath, p.data.PreferredPlanKey)
}

// save MUST be called with mu held.
func (p *uiModelPersistence) save() {
	if err := os.MkdirAll(filepath.Dir(p.filePath), 0755); err != nil {
		p.logger.Printf("UIModelPersistence: save mkdir failed: %v", err)
		return
	}
	raw, err := json.MarshalIndent(p.data, "", "  ")
	if err != nil {
		p.logger.Printf("UIModelPersistence: save marshal failed: %v", err)
		return
	}
	if err := os.WriteFile(p.filePath, raw, 0644); err != nil {
		p.logger.Printf("UIModelPersistence: save %s failed: %v", p.filePath, err)
	}
}

// LoadPreferredPlan reads the remembered plan key from dataDir without
// building a model. It returns "" when nothing was saved.
func LoadPreferredPlan(dataDir string, logger *log.Logger) string {
	return newUIModelPersistence(dataDir, logger).getPreferredPlan()
}
