package service

import (
	"github.com/natillera-ledger/internal/domain/loan"
	"github.com/natillera-ledger/internal/domain/lottery"
	"github.com/natillera-ledger/internal/domain/member"
	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/domain/outbox"
	"github.com/natillera-ledger/internal/domain/savings"
)

// Repositories groups the Postgres repositories shared by the services
type Repositories struct {
	Members   member.Repository
	Savings   savings.Repository
	Loans     loan.Repository
	Movements movement.Repository
	Outbox    outbox.Repository
	Lottery   lottery.Repository
}
