package tenant

import (
	"reflect"
	"regexp"
	"strings"

	"portfolio-backend/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

const ownerColumn = "user_id"

// Tables are the tenant-scoped tables guarded by Plugin.
var Tables = []string{"accounts", "assets", "holdings"}

// Plugin scopes every ORM statement on the tenant tables to the tenant
// bound on the statement context:
//   - query, row, update and delete statements get "user_id = tenant";
//   - created rows must carry the tenant's user_id;
//   - an update may not move a row to another user_id.
//
// A statement on a tenant table without a bound tenant fails with
// domain.ErrNoTenantContext. Raw SQL (Exec, Raw) that names a tenant table
// needs a bound tenant too, but its text is run as written: it is not
// scoped to the tenant. Register it after AutoMigrate.
type Plugin struct {
	tables map[string]struct{}
	rawRe  *regexp.Regexp
}

func (p *Plugin) Name() string {
	return "tenant"
}

func (p *Plugin) Initialize(db *gorm.DB) error {
	p.tables = make(map[string]struct{}, len(Tables))
	names := make([]string, 0, len(Tables))
	for _, t := range Tables {
		p.tables[t] = struct{}{}
		names = append(names, regexp.QuoteMeta(t))
	}
	p.rawRe = regexp.MustCompile(`(?i)\b(` + strings.Join(names, "|") + `)\b`)

	cb := db.Callback()
	if err := cb.Raw().Before("gorm:raw").Register("tenant:check_raw", p.checkRaw); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("tenant:check_raw_query", p.checkRaw); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("tenant:check_raw_row", p.checkRaw); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("tenant:scope_query", p.scope); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("tenant:scope_row", p.scope); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("tenant:scope_delete", p.scope); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("tenant:scope_update", p.scopeUpdate); err != nil {
		return err
	}
	return cb.Create().Before("gorm:create").Register("tenant:check_create", p.checkCreate)
}

func (p *Plugin) guarded(tx *gorm.DB) bool {
	if tx.Statement == nil || tx.Statement.SQL.Len() > 0 {
		return false
	}
	_, ok := p.tables[tx.Statement.Table]
	return ok
}

// checkRaw requires a tenant for raw SQL naming a tenant table.
func (p *Plugin) checkRaw(tx *gorm.DB) {
	if tx.Error != nil || tx.Statement == nil || tx.Statement.SQL.Len() == 0 {
		return
	}
	if p.rawRe.MatchString(tx.Statement.SQL.String()) {
		p.tenantOf(tx)
	}
}

func (p *Plugin) tenantOf(tx *gorm.DB) (Tenant, bool) {
	t, ok := FromContext(tx.Statement.Context)
	if !ok {
		_ = tx.AddError(domain.ErrNoTenantContext)
	}
	return t, ok
}

func (p *Plugin) scope(tx *gorm.DB) {
	if tx.Error != nil || !p.guarded(tx) {
		return
	}
	t, ok := p.tenantOf(tx)
	if !ok {
		return
	}
	// group existing conditions so an OR cannot escape the owner filter
	if c, ok := tx.Statement.Clauses["WHERE"]; ok {
		if w, ok := c.Expression.(clause.Where); ok && len(w.Exprs) > 0 {
			c.Expression = clause.Where{Exprs: []clause.Expression{clause.And(w.Exprs...)}}
			tx.Statement.Clauses["WHERE"] = c
		}
	}
	tx.Statement.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: ownerColumn}, Value: t.UserID()},
	}})
}

func (p *Plugin) scopeUpdate(tx *gorm.DB) {
	if tx.Error != nil || !p.guarded(tx) {
		return
	}
	t, ok := p.tenantOf(tx)
	if !ok {
		return
	}
	if !p.keepsOwner(tx, t) {
		_ = tx.AddError(domain.ErrNotFound)
		return
	}
	p.scope(tx)
}

// keepsOwner checks the post-image of an update. Assignments are resolved
// the way gorm resolves them, so "UserID" and "user_id" are the same
// column. An owner value that cannot be read is rejected.
func (p *Plugin) keepsOwner(tx *gorm.DB, t Tenant) bool {
	if c, ok := tx.Statement.Clauses["SET"]; ok {
		if set, ok := c.Expression.(clause.Set); ok {
			for _, a := range set {
				if p.isOwner(tx.Statement.Schema, a.Column.Name) && !ownsValue(t, a.Value) {
					return false
				}
			}
		}
	}

	switch dest := tx.Statement.Dest.(type) {
	case nil:
		return true
	case map[string]interface{}:
		for k, v := range dest {
			if p.isOwner(tx.Statement.Schema, k) && !ownsValue(t, v) {
				return false
			}
		}
		return true
	case *map[string]interface{}:
		if dest == nil {
			return true
		}
		for k, v := range *dest {
			if p.isOwner(tx.Statement.Schema, k) && !ownsValue(t, v) {
				return false
			}
		}
		return true
	}

	rv := reflect.Indirect(reflect.ValueOf(tx.Statement.Dest))
	if rv.Kind() != reflect.Struct {
		return true
	}
	sch := tx.Statement.Schema
	if sch == nil || rv.Type() != sch.ModelType {
		other := &gorm.Statement{DB: tx.Statement.DB}
		if err := other.Parse(tx.Statement.Dest); err != nil {
			return false
		}
		sch = other.Schema
	}
	field := sch.LookUpField(ownerColumn)
	if field == nil {
		return true
	}
	v, zero := field.ValueOf(tx.Statement.Context, rv)
	if zero && !selected(tx.Statement, field) {
		return true
	}
	return ownsValue(t, v)
}

// isOwner reports whether an assignment key names the owner column.
func (p *Plugin) isOwner(sch *schema.Schema, key string) bool {
	if sch != nil {
		if f := sch.LookUpField(key); f != nil {
			return f.DBName == ownerColumn
		}
	}
	return strings.EqualFold(key, ownerColumn) || key == "UserID"
}

func selected(stmt *gorm.Statement, field *schema.Field) bool {
	for _, s := range stmt.Selects {
		if s == "*" || s == field.DBName || s == field.Name {
			return true
		}
	}
	return false
}

func ownsValue(t Tenant, v interface{}) bool {
	id, ok := toUint(v)
	return ok && t.Owns(id)
}

func (p *Plugin) checkCreate(tx *gorm.DB) {
	if tx.Error != nil || !p.guarded(tx) {
		return
	}
	t, ok := p.tenantOf(tx)
	if !ok {
		return
	}
	if tx.Statement.Schema == nil {
		_ = tx.AddError(domain.ErrNoTenantContext)
		return
	}
	field := tx.Statement.Schema.LookUpField(ownerColumn)
	if field == nil {
		_ = tx.AddError(domain.NewNotNull(tx.Statement.Table, ownerColumn))
		return
	}

	rv := tx.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if !owned(tx, field, reflect.Indirect(rv.Index(i)), t) {
				_ = tx.AddError(domain.ErrNotFound)
				return
			}
		}
	case reflect.Struct:
		if !owned(tx, field, rv, t) {
			_ = tx.AddError(domain.ErrNotFound)
		}
	default:
		_ = tx.AddError(domain.ErrNoTenantContext)
	}
}

func owned(tx *gorm.DB, field *schema.Field, rv reflect.Value, t Tenant) bool {
	v, zero := field.ValueOf(tx.Statement.Context, rv)
	if zero {
		return false
	}
	id, ok := toUint(v)
	return ok && t.Owns(id)
}

func toUint(v interface{}) (uint, bool) {
	switch n := v.(type) {
	case uint:
		return n, true
	case uint64:
		return uint(n), true
	case uint32:
		return uint(n), true
	case int:
		return uint(n), n >= 0
	case int64:
		return uint(n), n >= 0
	case int32:
		return uint(n), n >= 0
	case *uint:
		if n == nil {
			return 0, false
		}
		return *n, true
	}
	return 0, false
}
