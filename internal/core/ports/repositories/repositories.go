package repositories

// Store is the storage collaborator consumed by the engines.
type Store interface {
	AccountRepositoryFacade
	FiscalYearRepositoryFacade
	JournalRepositoryFacade
	AuditRepository
	TransactionManager
}
