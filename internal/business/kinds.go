package business

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"labdesk/internal/records"
)

// Kind describes one entity type kept in a records.Store.
type Kind struct {
	Name    string
	Plural  string
	Prefix  string
	Dataset string
}

var (
	KindClient   = Kind{Name: "client", Plural: "clients", Prefix: "CLT", Dataset: "clients.yml"}
	KindContract = Kind{Name: "contract", Plural: "contracts", Prefix: "CTR", Dataset: "contracts.yml"}
	KindPayment  = Kind{Name: "payment", Plural: "payments", Prefix: "PAY", Dataset: "payments.yml"}
)

var kinds = map[string]Kind{
	KindClient.Name:   KindClient,
	KindContract.Name: KindContract,
	KindPayment.Name:  KindPayment,
}

// Kinds returns every registered entity kind sorted by name.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupKind resolves a kind by singular or plural name.
func LookupKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if k, ok := kinds[name]; ok {
		return k, nil
	}
	for _, k := range kinds {
		if k.Plural == name {
			return k, nil
		}
	}
	return Kind{}, fmt.Errorf("unknown entity kind %q", name)
}

// Observer is notified after a store mutation succeeds.
type Observer interface {
	Created(kind Kind, id string, record any)
	Updated(kind Kind, id string, record any)
	Deleted(kind Kind, id string, record any)
}

// ClientStore, ContractStore and PaymentStore are the concrete stores per kind.
type (
	ClientStore   = records.Store[Client, *Client]
	ContractStore = records.Store[Contract, *Contract]
	PaymentStore  = records.Store[Payment, *Payment]
)

// NewClientStore returns a client store seeded with initial.
func NewClientStore(initial []Client, obs Observer, now func() time.Time) *ClientStore {
	return records.New(storeConfig[Client](KindClient, obs, now, nil), initial)
}

// NewContractStore returns a contract store seeded with initial. New contracts
// default to draft.
func NewContractStore(initial []Contract, obs Observer, now func() time.Time) *ContractStore {
	return records.New(storeConfig(KindContract, obs, now, func(c *Contract) {
		if c.Status == "" {
			c.Status = ContractDraft
		}
	}), initial)
}

// NewPaymentStore returns a payment store seeded with initial. New payments
// default to pending.
func NewPaymentStore(initial []Payment, obs Observer, now func() time.Time) *PaymentStore {
	return records.New(storeConfig(KindPayment, obs, now, func(p *Payment) {
		if p.Status == "" {
			p.Status = PaymentPending
		}
	}), initial)
}

func storeConfig[T any, P records.Record[T]](kind Kind, obs Observer, now func() time.Time, before func(*T)) records.Config[T] {
	cfg := records.Config[T]{
		IDPrefix:     kind.Prefix,
		Now:          now,
		BeforeCreate: before,
	}
	if obs == nil {
		return cfg
	}
	cfg.OnCreated = func(rec T) { obs.Created(kind, P(&rec).RecordMeta().ID, rec) }
	cfg.OnUpdated = func(rec T) { obs.Updated(kind, P(&rec).RecordMeta().ID, rec) }
	cfg.OnDeleted = func(rec T) { obs.Deleted(kind, P(&rec).RecordMeta().ID, rec) }
	return cfg
}
