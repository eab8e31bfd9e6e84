package engine

import (
	"context"
	"fmt"
	"time"

	"lakeboot/internal/ddl"
	"lakeboot/internal/domain"
)

// GenCatalog is the session catalog dbgen writes into before the copy.
const GenCatalog = "memory"

// Loader generates the TPC-H relations and copies them into the catalog.
type Loader struct {
	session  *Session
	attacher *Attacher
	alias    string
}

// NewLoader creates a Loader that attaches through attacher before loading.
func NewLoader(session *Session, attacher *Attacher) *Loader {
	return &Loader{session: session, attacher: attacher, alias: attacher.opts.Alias}
}

// Load validates scale, attaches the catalog, generates the dataset and
// replaces every TPC-H relation in <alias>.main. The copies run in a single
// transaction so a failed relation leaves the previous tables in place.
func (l *Loader) Load(ctx context.Context, scale float64) (*domain.LoadResult, error) {
	if err := domain.ValidateScale(scale); err != nil {
		return nil, err
	}
	start := time.Now()

	if _, err := l.attacher.Attach(ctx); err != nil {
		return nil, err
	}
	if err := Generate(ctx, l.session, scale); err != nil {
		return nil, err
	}
	if err := l.copyRelations(ctx); err != nil {
		return nil, err
	}

	res := &domain.LoadResult{Scale: scale, Catalog: l.alias}
	for _, rel := range domain.TPCHRelations {
		q, err := ddl.CountRows(l.alias, "main", rel)
		if err != nil {
			return nil, fmt.Errorf("build DDL: %w", err)
		}
		n, err := l.session.queryInt(ctx, "count "+rel, q)
		if err != nil {
			return nil, err
		}
		res.Relations = append(res.Relations, domain.RelationCount{Name: rel, Rows: n})
	}
	if err := dropGenerated(ctx, l.session); err != nil {
		return nil, err
	}
	res.Duration = time.Since(start)

	l.session.logger.Info().
		Str("catalog", l.alias).
		Str("scale", domain.FormatScale(scale)).
		Dur("elapsed", res.Duration).
		Msg("tpch dataset loaded")
	return res, nil
}

func (l *Loader) copyRelations(ctx context.Context) (err error) {
	tx, err := l.session.conn.BeginTx(ctx, nil)
	if err != nil {
		return domain.ErrEngine("begin load", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				l.session.logger.Warn().Err(rbErr).Msg("rollback load")
			}
		}
	}()

	for _, rel := range domain.TPCHRelations {
		stmt, buildErr := ddl.CreateOrReplaceTableAs(
			[3]string{l.alias, "main", rel},
			[3]string{GenCatalog, "main", rel},
		)
		if buildErr != nil {
			return fmt.Errorf("build DDL: %w", buildErr)
		}
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return domain.ErrEngine("copy "+rel, err)
		}
		l.session.logger.Debug().Str("relation", rel).Msg("relation copied")
	}
	if err = tx.Commit(); err != nil {
		return domain.ErrEngine("commit load", err)
	}
	return nil
}

// Generate runs dbgen at scale into the session's in-memory catalog, first
// dropping relations left over from an earlier run.
func Generate(ctx context.Context, s *Session, scale float64) error {
	if err := s.LoadExtensions(ctx, "tpch"); err != nil {
		return err
	}
	if err := dropGenerated(ctx, s); err != nil {
		return err
	}
	stmt, err := ddl.GenerateTPCH(scale, GenCatalog)
	if err != nil {
		return domain.ErrInvalidScale(domain.FormatScale(scale))
	}
	return s.exec(ctx, "dbgen", stmt)
}

func dropGenerated(ctx context.Context, s *Session) error {
	for _, rel := range domain.TPCHRelations {
		stmt, err := ddl.DropTableIfExists(GenCatalog, "main", rel)
		if err != nil {
			return fmt.Errorf("build DDL: %w", err)
		}
		if err := s.exec(ctx, "drop generated "+rel, stmt); err != nil {
			return err
		}
	}
	return nil
}
