package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"labdesk/internal/business"
	"labdesk/internal/dataset"
	"labdesk/internal/records"
)

// entity binds one business kind to its CLI flags and table layout.
type entity[T any, P records.Record[T]] struct {
	kind     business.Kind
	flags    []cli.Flag
	newStore func(initial []T, obs business.Observer, now func() time.Time) *records.Store[T, P]
	// apply copies the flags that were set on the command line into rec.
	apply    func(c *cli.Context, rec *T) error
	validate func(T) error
	header   string
	row      func(T) string
}

func entityCommand[T any, P records.Record[T]](s *session, e entity[T, P]) *cli.Command {
	return &cli.Command{
		Name:    e.kind.Name,
		Aliases: []string{e.kind.Plural},
		Usage:   fmt.Sprintf("Manage %s records (%s-###)", e.kind.Name, e.kind.Prefix),
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  fmt.Sprintf("List %s", e.kind.Plural),
				Action: func(c *cli.Context) error { return e.list(c, s) },
			},
			{
				Name:      "get",
				Usage:     fmt.Sprintf("Show one %s", e.kind.Name),
				ArgsUsage: "<id>",
				Action:    func(c *cli.Context) error { return e.get(c, s) },
			},
			{
				Name:   "create",
				Usage:  fmt.Sprintf("Create a %s", e.kind.Name),
				Flags:  e.flags,
				Action: func(c *cli.Context) error { return e.create(c, s) },
			},
			{
				Name:      "update",
				Usage:     fmt.Sprintf("Update fields of a %s", e.kind.Name),
				ArgsUsage: "<id>",
				Flags:     e.flags,
				Action:    func(c *cli.Context) error { return e.update(c, s) },
			},
			{
				Name:      "delete",
				Usage:     fmt.Sprintf("Delete a %s", e.kind.Name),
				ArgsUsage: "<id>",
				Action:    func(c *cli.Context) error { return e.remove(c, s) },
			},
		},
	}
}

type openStore[T any, P records.Record[T]] struct {
	*records.Store[T, P]
	path string
	obs  *recordObserver
}

func (e entity[T, P]) open(c *cli.Context, s *session) (*openStore[T, P], error) {
	ws, err := resolveWorkspace(c)
	if err != nil {
		return nil, err
	}
	path := ws.DatasetPath(e.kind.Dataset)
	items, err := dataset.Load[T](path)
	if err != nil {
		return nil, err
	}
	obs := &recordObserver{s: s, audit: auditLogger(ws)}
	return &openStore[T, P]{Store: e.newStore(items, obs, time.Now), path: path, obs: obs}, nil
}

// save writes the dataset and then emits the mutations it persisted.
func (o *openStore[T, P]) save() error {
	if err := dataset.Save(o.path, o.Items()); err != nil {
		o.obs.discard(o.path, err)
		return err
	}
	o.obs.flush()
	return nil
}

func (e entity[T, P]) list(c *cli.Context, s *session) error {
	store, err := e.open(c, s)
	if err != nil {
		return err
	}
	items := store.Items()
	if len(items) == 0 {
		fmt.Fprintf(s.stdout, "No %s.\n", e.kind.Plural)
		return nil
	}
	tw := tabwriter.NewWriter(s.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\t"+e.header)
	for _, item := range items {
		meta := P(&item).RecordMeta()
		fmt.Fprintf(tw, "%s\t%s\t%s\n", meta.ID, meta.CreatedAt, e.row(item))
	}
	return tw.Flush()
}

func (e entity[T, P]) get(c *cli.Context, s *session) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	store, err := e.open(c, s)
	if err != nil {
		return err
	}
	item, ok := store.FindByID(id)
	if !ok {
		return e.notFound(id)
	}
	return printYAML(s, item)
}

func (e entity[T, P]) create(c *cli.Context, s *session) error {
	store, err := e.open(c, s)
	if err != nil {
		return err
	}
	var fields T
	if err := e.apply(c, &fields); err != nil {
		return err
	}
	if err := e.validate(fields); err != nil {
		return fmt.Errorf("invalid %s:\n%w", e.kind.Name, err)
	}

	created := store.Create(fields)
	if err := store.save(); err != nil {
		return err
	}
	return printYAML(s, created)
}

func (e entity[T, P]) update(c *cli.Context, s *session) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	store, err := e.open(c, s)
	if err != nil {
		return err
	}
	before, ok := store.FindByID(id)
	if !ok {
		return e.notFound(id)
	}
	merged := before
	if err := e.apply(c, &merged); err != nil {
		return err
	}
	if err := e.validate(merged); err != nil {
		return fmt.Errorf("invalid %s:\n%w", e.kind.Name, err)
	}

	diff, err := dataset.Diff(id+".yml", before, merged)
	if err != nil {
		return err
	}
	if diff == "" {
		fmt.Fprintf(s.stdout, "No changes to %s.\n", id)
		return nil
	}
	if !store.Update(id, func(rec *T) { *rec = merged }) {
		return e.notFound(id)
	}
	if err := store.save(); err != nil {
		return err
	}
	fmt.Fprint(s.stdout, diff)
	return nil
}

func (e entity[T, P]) remove(c *cli.Context, s *session) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	store, err := e.open(c, s)
	if err != nil {
		return err
	}
	if !store.Delete(id) {
		return e.notFound(id)
	}
	if err := store.save(); err != nil {
		return err
	}
	fmt.Fprintf(s.stdout, "Deleted %s %s\n", e.kind.Name, id)
	return nil
}

func (e entity[T, P]) notFound(id string) error {
	return fmt.Errorf("%s %s: %w", e.kind.Name, id, records.ErrNotFound)
}

func requireID(c *cli.Context) (string, error) {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return "", fmt.Errorf("id is required")
	}
	return id, nil
}

func printYAML(s *session, v any) error {
	enc := yaml.NewEncoder(s.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func clientEntity() entity[business.Client, *business.Client] {
	return entity[business.Client, *business.Client]{
		kind: business.KindClient,
		flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Client name"},
			&cli.StringFlag{Name: "organization", Usage: "Organization"},
			&cli.StringFlag{Name: "email", Usage: "Contact email"},
			&cli.StringFlag{Name: "phone", Usage: "Contact phone"},
			&cli.StringFlag{Name: "type", Usage: "academic, commercial or government"},
		},
		newStore: business.NewClientStore,
		apply: func(c *cli.Context, rec *business.Client) error {
			setString(c, "name", &rec.Name)
			setString(c, "organization", &rec.Organization)
			setString(c, "email", &rec.Email)
			setString(c, "phone", &rec.Phone)
			if c.IsSet("type") {
				rec.Type = business.ClientType(strings.ToLower(c.String("type")))
			}
			return nil
		},
		validate: business.Client.Validate,
		header:   "NAME\tTYPE\tEMAIL",
		row: func(r business.Client) string {
			return strings.Join([]string{r.Name, string(r.Type), r.Email}, "\t")
		},
	}
}

func contractEntity() entity[business.Contract, *business.Contract] {
	return entity[business.Contract, *business.Contract]{
		kind: business.KindContract,
		flags: []cli.Flag{
			&cli.StringFlag{Name: "client", Usage: "Client id (CLT-###)"},
			&cli.StringFlag{Name: "title", Usage: "Contract title"},
			&cli.StringFlag{Name: "value", Usage: "Contract value"},
			&cli.StringFlag{Name: "start", Usage: "Start date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "end", Usage: "End date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "status", Usage: "draft, active, completed or cancelled"},
		},
		newStore: business.NewContractStore,
		apply: func(c *cli.Context, rec *business.Contract) error {
			setString(c, "client", &rec.ClientID)
			setString(c, "title", &rec.Title)
			setString(c, "start", &rec.StartDate)
			setString(c, "end", &rec.EndDate)
			if c.IsSet("status") {
				rec.Status = business.ContractStatus(strings.ToLower(c.String("status")))
			}
			return setDecimal(c, "value", &rec.Value)
		},
		validate: business.Contract.Validate,
		header:   "CLIENT\tTITLE\tVALUE\tSTATUS",
		row: func(r business.Contract) string {
			return strings.Join([]string{r.ClientID, r.Title, r.Value.StringFixed(2), string(r.Status)}, "\t")
		},
	}
}

func paymentEntity() entity[business.Payment, *business.Payment] {
	return entity[business.Payment, *business.Payment]{
		kind: business.KindPayment,
		flags: []cli.Flag{
			&cli.StringFlag{Name: "contract", Usage: "Contract id (CTR-###)"},
			&cli.StringFlag{Name: "amount", Usage: "Payment amount"},
			&cli.StringFlag{Name: "due", Usage: "Due date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "method", Usage: "Payment method"},
			&cli.StringFlag{Name: "status", Usage: "pending, paid or overdue"},
		},
		newStore: business.NewPaymentStore,
		apply: func(c *cli.Context, rec *business.Payment) error {
			setString(c, "contract", &rec.ContractID)
			setString(c, "due", &rec.DueDate)
			setString(c, "method", &rec.Method)
			if c.IsSet("status") {
				rec.Status = business.PaymentStatus(strings.ToLower(c.String("status")))
			}
			return setDecimal(c, "amount", &rec.Amount)
		},
		validate: business.Payment.Validate,
		header:   "CONTRACT\tAMOUNT\tDUE\tSTATUS",
		row: func(r business.Payment) string {
			return strings.Join([]string{r.ContractID, r.Amount.StringFixed(2), r.DueDate, string(r.Status)}, "\t")
		},
	}
}

func setString(c *cli.Context, name string, dst *string) {
	if c.IsSet(name) {
		*dst = strings.TrimSpace(c.String(name))
	}
}

func setDecimal(c *cli.Context, name string, dst *decimal.Decimal) error {
	if !c.IsSet(name) {
		return nil
	}
	v, err := decimal.NewFromString(strings.TrimSpace(c.String(name)))
	if err != nil {
		return fmt.Errorf("--%s: %w", name, err)
	}
	*dst = v
	return nil
}
