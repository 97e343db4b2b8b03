package db

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SyncerDao interface {
	SlotDB
	ExecBlockDB
	TransactionDB
	ValidatorDB
	SpecDB
}

type SyncerSvcDB struct {
	db *gorm.DB
}

func NewSyncerSvcDB(db *gorm.DB) SyncerDao {
	return &SyncerSvcDB{
		db,
	}
}

type SlotDB interface {
	GetHighestSlot() (*Slot, error)
	GetSlot(height uint64) (*Slot, error)
	InsertSlotOrSkip(slot *Slot) (bool, error)
}

// GetHighestSlot returns nil when no slot is stored yet.
func (d *SyncerSvcDB) GetHighestSlot() (*Slot, error) {
	slot := Slot{}
	err := d.db.Model(Slot{}).Order("height desc").Take(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get highest slot")
	}
	return &slot, nil
}

func (d *SyncerSvcDB) GetSlot(height uint64) (*Slot, error) {
	slot := Slot{}
	err := d.db.Model(Slot{}).Where("height = ?", height).Take(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get slot %d", height)
	}
	return &slot, nil
}

// InsertSlotOrSkip keeps the first row written for a height, it reports whether the row was inserted.
func (d *SyncerSvcDB) InsertSlotOrSkip(slot *Slot) (bool, error) {
	res := d.db.Clauses(clause.OnConflict{DoNothing: true}).Create(slot)
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "insert slot %d", slot.Height)
	}
	return res.RowsAffected == 1, nil
}

type ExecBlockDB interface {
	GetHighestExecBlock() (*ExecBlock, error)
	GetExecBlock(hash string) (*ExecBlock, error)
	GetExecBlockByNumber(number uint64) (*ExecBlock, error)
	SaveExecBlockAndTransactions(block *ExecBlock, txs []*Transaction) error
}

// GetHighestExecBlock returns nil when no execution block is stored yet.
func (d *SyncerSvcDB) GetHighestExecBlock() (*ExecBlock, error) {
	block := ExecBlock{}
	err := d.db.Model(ExecBlock{}).Order("number desc").Take(&block).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get highest execution block")
	}
	return &block, nil
}

func (d *SyncerSvcDB) GetExecBlock(hash string) (*ExecBlock, error) {
	block := ExecBlock{}
	err := d.db.Model(ExecBlock{}).Where("hash = ?", hash).Take(&block).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get execution block %s", hash)
	}
	return &block, nil
}

func (d *SyncerSvcDB) GetExecBlockByNumber(number uint64) (*ExecBlock, error) {
	block := ExecBlock{}
	err := d.db.Model(ExecBlock{}).Where("number = ?", number).Take(&block).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get execution block %d", number)
	}
	return &block, nil
}

// SaveExecBlockAndTransactions strictly inserts a block with its transactions in one db transaction,
// a block that is already stored fails with ErrDuplicateEntry and nothing is written.
func (d *SyncerSvcDB) SaveExecBlockAndTransactions(block *ExecBlock, txs []*Transaction) error {
	err := d.db.Transaction(func(dbTx *gorm.DB) error {
		if err := dbTx.Create(block).Error; err != nil {
			return err
		}
		if len(txs) != 0 {
			if err := dbTx.Create(txs).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if IsDuplicateEntry(err) {
			return errors.Wrapf(ErrDuplicateEntry, "execution block %d (%s)", block.Number, block.Hash)
		}
		return errors.Wrapf(err, "save execution block %d", block.Number)
	}
	return nil
}

type TransactionDB interface {
	GetTransaction(hash string) (*Transaction, error)
	GetTransactionsByBlock(blockHash string) ([]*Transaction, error)
	SetTransactionStatus(hash string, status bool) (int64, error)
}

func (d *SyncerSvcDB) GetTransaction(hash string) (*Transaction, error) {
	tx := Transaction{}
	err := d.db.Model(Transaction{}).Where("hash = ?", hash).Take(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get transaction %s", hash)
	}
	return &tx, nil
}

func (d *SyncerSvcDB) GetTransactionsByBlock(blockHash string) ([]*Transaction, error) {
	txs := make([]*Transaction, 0)
	if err := d.db.Where("block_hash = ?", blockHash).Order("idx asc").Find(&txs).Error; err != nil {
		return txs, errors.Wrapf(err, "get transactions of block %s", blockHash)
	}
	return txs, nil
}

func (d *SyncerSvcDB) SetTransactionStatus(hash string, status bool) (int64, error) {
	res := d.db.Model(Transaction{}).Where("hash = ?", hash).Update("status", status)
	if res.Error != nil {
		return 0, errors.Wrapf(res.Error, "set status of transaction %s", hash)
	}
	return res.RowsAffected, nil
}

type ValidatorDB interface {
	GetValidator(index uint64) (*Validator, error)
	GetValidatorsByPubkey(pubkey string) ([]*Validator, error)
	CountValidators() (int64, error)
	UpsertValidators(validators []*Validator, batchSize int) error
	SetValidatorDepositTransaction(pubkey, txHash string) (int64, error)
}

func (d *SyncerSvcDB) GetValidator(index uint64) (*Validator, error) {
	v := Validator{}
	err := d.db.Model(Validator{}).Where("idx = ?", index).Take(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get validator %d", index)
	}
	return &v, nil
}

func (d *SyncerSvcDB) GetValidatorsByPubkey(pubkey string) ([]*Validator, error) {
	validators := make([]*Validator, 0)
	if err := d.db.Where("pubkey = ?", pubkey).Order("idx asc").Find(&validators).Error; err != nil {
		return validators, errors.Wrapf(err, "get validators by pubkey %s", pubkey)
	}
	return validators, nil
}

func (d *SyncerSvcDB) CountValidators() (int64, error) {
	var count int64
	if err := d.db.Model(Validator{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count validators")
	}
	return count, nil
}

// UpsertValidators merges validators keyed on their index, batchSize rows per statement.
func (d *SyncerSvcDB) UpsertValidators(validators []*Validator, batchSize int) error {
	if len(validators) == 0 {
		return nil
	}
	err := d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idx"}},
		DoUpdates: clause.AssignmentColumns(ValidatorMutableColumns),
	}).CreateInBatches(validators, batchSize).Error
	if err != nil {
		return errors.Wrapf(err, "upsert %d validators", len(validators))
	}
	return nil
}

// SetValidatorDepositTransaction links the validators owning pubkey to a deposit transaction and returns how many rows matched.
func (d *SyncerSvcDB) SetValidatorDepositTransaction(pubkey, txHash string) (int64, error) {
	res := d.db.Model(Validator{}).Where("pubkey = ?", pubkey).Update("deposit_transaction", txHash)
	if res.Error != nil {
		return 0, errors.Wrapf(res.Error, "set deposit transaction of validator %s", pubkey)
	}
	return res.RowsAffected, nil
}

type SpecDB interface {
	GetSpec(name string) (*Spec, error)
	InsertSpecOrSkip(spec *Spec) (bool, error)
}

func (d *SyncerSvcDB) GetSpec(name string) (*Spec, error) {
	spec := Spec{}
	err := d.db.Model(Spec{}).Where("name = ?", name).Take(&spec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get spec %s", name)
	}
	return &spec, nil
}

func (d *SyncerSvcDB) InsertSpecOrSkip(spec *Spec) (bool, error) {
	res := d.db.Clauses(clause.OnConflict{DoNothing: true}).Create(spec)
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "insert spec %s", spec.Name)
	}
	return res.RowsAffected == 1, nil
}

func AutoMigrateDB(db *gorm.DB) {
	var err error
	if err = db.AutoMigrate(&Spec{}); err != nil {
		panic(err)
	}
	if err = db.AutoMigrate(&Slot{}); err != nil {
		panic(err)
	}
	if err = db.AutoMigrate(&ExecBlock{}); err != nil {
		panic(err)
	}
	if err = db.AutoMigrate(&Transaction{}); err != nil {
		panic(err)
	}
	if err = db.AutoMigrate(&Validator{}); err != nil {
		panic(err)
	}
}
