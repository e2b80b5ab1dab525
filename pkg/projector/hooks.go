package projector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/goliatone/go-seoform/pkg/entity"
	"github.com/goliatone/go-seoform/pkg/formtree"
)

// StatusKey is the SEO field item key holding the stored overall score.
const StatusKey = "status"

// AddSnippetEditorMarkup inserts the snippet editor container right after the
// body field. The target ids are published in the settings so a later
// Project call reuses them.
func (p *Projector) AddSnippetEditorMarkup(ctx context.Context, tree *formtree.Node) (*formtree.Node, error) {
	if err := p.checkHook(ctx, tree); err != nil {
		return nil, err
	}
	if !tree.Has(formtree.Path{p.seoField}) {
		return tree, nil
	}

	targets := p.targets(tree)
	html, err := p.renderer.SnippetEditorMarkup(ctx, targets)
	if err != nil {
		return nil, fmt.Errorf("projector: snippet editor markup: %w", err)
	}

	bodyField, ok := tree.StringAt(formtree.ParsePath(BodyHintPath))
	if !ok || bodyField == "" {
		bodyField = BodyFieldKey
	}
	weight := numberAt(tree, formtree.Path{bodyField, "#weight"})

	element := formtree.NewComposite()
	element.Set("#markup", formtree.NewLeaf(html))
	element.Set("#weight", formtree.NewLeaf(weightValue(weight+1)))
	tree.SetPath(formtree.Path{p.seoField, "widget", "0", "yoast_seo", "snippet_analysis"}, element)

	if err := writeSettings(tree, map[string]any{"targets": targets}); err != nil {
		return nil, err
	}
	p.logger.Debug("added snippet editor markup", zap.String("wrapper", targets.WrapperTargetID))
	return tree, nil
}

// AddOverallScoreMarkup appends the overall score badge to the focus keyword
// element's field suffix. The score is the status stored on the edited
// entity's SEO field, or 0 when absent.
func (p *Projector) AddOverallScoreMarkup(ctx context.Context, tree *formtree.Node, state FormState) (*formtree.Node, error) {
	if err := p.checkHook(ctx, tree); err != nil {
		return nil, err
	}
	focusKeyword := formtree.Path{p.seoField, "widget", "0", "yoast_seo", FieldFocusKeyword}
	if path, ok := p.base.Paths[FieldFocusKeyword]; ok && path != "" {
		focusKeyword = formtree.ParsePath(path)
	}
	element, ok := tree.Lookup(focusKeyword)
	if !ok || element.IsLeaf() {
		return tree, nil
	}

	score := p.storedScore(entityFrom(state))
	html, err := p.renderer.OverallScoreMarkup(ctx, score)
	if err != nil {
		return nil, fmt.Errorf("projector: overall score markup: %w", err)
	}

	suffix, _ := tree.StringAt(focusKeyword.Append("#field_suffix"))
	element.Set("#field_suffix", formtree.NewLeaf(suffix+html))
	return tree, nil
}

func (p *Projector) checkHook(ctx context.Context, tree *formtree.Node) error {
	if ctx == nil {
		return errors.New("projector: context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if tree == nil {
		return errors.New("projector: form tree is required")
	}
	if p.renderer == nil {
		return errors.New("projector: markup renderer is required")
	}
	return nil
}

func (p *Projector) storedScore(edited entity.Entity) float64 {
	if edited == nil {
		return 0
	}
	items, ok := edited.FieldItems(p.seoField)
	if !ok || len(items) == 0 {
		return 0
	}
	raw, ok := items[0].String(StatusKey)
	if !ok {
		return 0
	}
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.logger.Warn("ignoring malformed stored score", zap.String("status", raw), zap.Error(err))
		return 0
	}
	return score
}

func numberAt(tree *formtree.Node, path formtree.Path) float64 {
	raw, ok := tree.StringAt(path)
	if !ok {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}

func weightValue(weight float64) any {
	if weight == math.Trunc(weight) {
		return int(weight)
	}
	return weight
}
