package repository

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/fundchain/chain"
	"github.com/fundchain/model"
	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// RecordEvents persists one audit row per decoded event. It satisfies the
// contract facade's sink interface; failures are logged, never propagated
// back into the transaction path.
func (r *EventRepository) RecordEvents(txHash string, blockNumber uint64, events []chain.Event) {
	for _, ev := range events {
		payload, err := json.Marshal(stringifyArgs(ev.Args))
		if err != nil {
			log.Printf("event audit: marshal %s args: %v", ev.Name, err)
			payload = []byte("{}")
		}
		row := &model.OnchainEvent{
			TxHash:      txHash,
			BlockNumber: blockNumber,
			Name:        ev.Name,
			Payload:     string(payload),
		}
		if err := r.db.Create(row).Error; err != nil {
			log.Printf("event audit: persist %s: %v", ev.Name, err)
		}
	}
}

func (r *EventRepository) ListByTx(txHash string) ([]*model.OnchainEvent, error) {
	var list []*model.OnchainEvent
	if err := r.db.Where("tx_hash=?", txHash).Order("id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *EventRepository) ListByName(name string, page, size int) ([]*model.OnchainEvent, int64, error) {
	var list []*model.OnchainEvent
	var total int64
	r.db.Model(&model.OnchainEvent{}).Where("name=?", name).Count(&total)
	offset := (page - 1) * size
	if err := r.db.Where("name=?", name).Order("id DESC").Offset(offset).Limit(size).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// stringifyArgs renders event argument values (addresses, big ints) into
// JSON-safe strings.
func stringifyArgs(args map[string]any) map[string]string {
	out := make(map[string]string, len(args))
	for k, v := range args {
		switch val := v.(type) {
		case string:
			out[k] = val
		case fmt.Stringer:
			out[k] = val.String()
		default:
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	return out
}
