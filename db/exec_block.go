package db

type ExecBlock struct {
	Hash             string `gorm:"primaryKey;size:64"`
	Number           uint64 `gorm:"NOT NULL;uniqueIndex:idx_exec_block_number"`
	ParentHash       string `gorm:"NOT NULL;size:64"`
	StateRoot        string `gorm:"NOT NULL;size:64"`
	TransactionsRoot string `gorm:"NOT NULL;size:64"`
	ReceiptsRoot     string `gorm:"NOT NULL;size:64"`
}

func (*ExecBlock) TableName() string {
	return "execution_blocks"
}
