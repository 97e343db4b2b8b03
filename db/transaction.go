package db

type Transaction struct {
	Hash        string  `gorm:"primaryKey;size:64"`
	BlockHash   string  `gorm:"NOT NULL;size:64;index:idx_transaction_block_hash"`
	Index       uint64  `gorm:"column:idx;NOT NULL"`
	FromAddress string  `gorm:"NOT NULL;size:40"`
	ToAddress   *string `gorm:"size:40;index:idx_transaction_to_address"` // nil for contract creation
	Input       []byte
	Value       []byte // 32 bytes, little endian
	Status      *bool  // only set for calls to the deposit contract, once the receipt is known
}

func (*Transaction) TableName() string {
	return "transactions"
}
