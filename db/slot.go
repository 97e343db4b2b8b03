package db

// Slot is one beacon chain slot. Missed slots have no row, pre-merge slots have no execution block reference.
type Slot struct {
	Height          uint64  `gorm:"primaryKey;autoIncrement:false"`
	BlockHash       *string `gorm:"size:64;index:idx_slot_block_hash"` // hash of the execution block carried by the payload
	BlockNumber     *uint64
	ValidatorsCount *uint64
}

func (*Slot) TableName() string {
	return "slots"
}
