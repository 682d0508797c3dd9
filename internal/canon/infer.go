package canon

import (
	"fmt"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/core"
	"github.com/lumen-lang/lumen/internal/errors"
	"github.com/lumen-lang/lumen/internal/modid"
	"github.com/lumen-lang/lumen/internal/types"
)

// infer walks expr, producing the type build_constraint assigns it and the
// constraints that must hold for that assignment to be sound. A bare Ident
// is always a local binding — a lambda parameter, a let binding, or one of
// this module's own top-level siblings, all pre-seeded into the base
// environment so mutual reference works — since Lumen's grammar has no
// unqualified import form; a QualifiedRef is resolved against imports and
// turned into a fresh placeholder variable recorded in importRefs, because
// the foreign module's real type isn't known until the solver consults its
// already-solved iface.SolvedTypes.
func infer(
	expr ast.Expr,
	env *types.Env,
	vs *types.VarStore,
	imports map[string]modid.ID,
	importRefs map[string]core.Symbol,
	resolved map[string]core.Symbol,
) (types.Type, core.Constraint, error) {
	switch e := expr.(type) {
	case *ast.Lit:
		return literalType(e), core.Empty{}, nil

	case *ast.Ident:
		scheme, ok := env.Lookup(e.Name)
		if !ok {
			return nil, nil, errors.WrapReport(errors.New(errors.CAN001, "canonicalize",
				fmt.Sprintf("%q is not defined", e.Name)).
				WithSpan(ast.Span{Start: e.Pos, End: e.Pos}))
		}
		return types.Instantiate(scheme, func() string { return vs.Fresh().Name }), core.Empty{}, nil

	case *ast.QualifiedRef:
		modID, ok := imports[e.Module]
		if !ok {
			return nil, nil, errors.WrapReport(errors.New(errors.CAN001, "canonicalize",
				fmt.Sprintf("%s is not imported", e.Module)).
				WithSpan(ast.Span{Start: e.Pos, End: e.Pos}))
		}
		sym := core.Symbol{Module: modID, Name: e.Name}
		resolved[e.Module+"."+e.Name] = sym
		placeholder := vs.Fresh()
		importRefs[placeholder.Name] = sym
		return placeholder, core.Empty{}, nil

	case *ast.Lambda:
		child := env.Child()
		paramTypes := make([]types.Type, len(e.Params))
		for i, p := range e.Params {
			pv := vs.Fresh()
			paramTypes[i] = pv
			child.Bind(p, types.Mono(pv))
		}
		bodyType, bodyC, err := infer(e.Body, child, vs, imports, importRefs, resolved)
		if err != nil {
			return nil, nil, err
		}
		return &types.TFunc{Params: paramTypes, Return: bodyType}, bodyC, nil

	case *ast.Apply:
		fnType, fnC, err := infer(e.Fn, env, vs, imports, importRefs, resolved)
		if err != nil {
			return nil, nil, err
		}
		argTypes := make([]types.Type, len(e.Args))
		cs := []core.Constraint{fnC}
		for i, a := range e.Args {
			at, ac, err := infer(a, env, vs, imports, importRefs, resolved)
			if err != nil {
				return nil, nil, err
			}
			argTypes[i] = at
			cs = append(cs, ac)
		}
		resultVar := vs.Fresh()
		cs = append(cs, core.CEq{Left: fnType, Right: &types.TFunc{Params: argTypes, Return: resultVar}})
		return resultVar, core.And(cs...), nil

	case *ast.Let:
		// Monomorphic local binding: Name gets one fresh variable, unified
		// once against Value's inferred type, then reused verbatim at every
		// occurrence in Body. No generalization happens here — see the
		// doc comment on core.Constraint for why.
		valType, valC, err := infer(e.Value, env, vs, imports, importRefs, resolved)
		if err != nil {
			return nil, nil, err
		}
		bv := vs.Fresh()
		child := env.Child()
		child.Bind(e.Name, types.Mono(bv))
		bodyType, bodyC, err := infer(e.Body, child, vs, imports, importRefs, resolved)
		if err != nil {
			return nil, nil, err
		}
		return bodyType, core.And(valC, core.CEq{Left: bv, Right: valType}, bodyC), nil

	case *ast.If:
		condType, condC, err := infer(e.Cond, env, vs, imports, importRefs, resolved)
		if err != nil {
			return nil, nil, err
		}
		thenType, thenC, err := infer(e.Then, env, vs, imports, importRefs, resolved)
		if err != nil {
			return nil, nil, err
		}
		elseType, elseC, err := infer(e.Else, env, vs, imports, importRefs, resolved)
		if err != nil {
			return nil, nil, err
		}
		return thenType, core.And(
			condC, thenC, elseC,
			core.CEq{Left: condType, Right: types.TBool},
			core.CEq{Left: thenType, Right: elseType},
		), nil

	case *ast.BinOp:
		leftType, leftC, err := infer(e.Left, env, vs, imports, importRefs, resolved)
		if err != nil {
			return nil, nil, err
		}
		rightType, rightC, err := infer(e.Right, env, vs, imports, importRefs, resolved)
		if err != nil {
			return nil, nil, err
		}
		resultType, opC := binOpConstraints(e, leftType, rightType)
		return resultType, core.And(leftC, rightC, opC), nil

	default:
		return nil, nil, errors.WrapReport(errors.New(errors.CAN001, "canonicalize",
			fmt.Sprintf("unhandled expression form %T", expr)))
	}
}

func literalType(l *ast.Lit) types.Type {
	switch l.Kind {
	case ast.IntLit:
		return types.TInt
	case ast.StringLit:
		return types.TString
	case ast.BoolLit:
		return types.TBool
	default:
		return types.TInt
	}
}

// binOpConstraints assigns a result type and operand constraints for one of
// Lumen's fixed operator set: arithmetic operators take and return Int,
// comparisons take matching operands and return Bool.
func binOpConstraints(e *ast.BinOp, left, right types.Type) (types.Type, core.Constraint) {
	switch e.Op {
	case "+", "-", "*", "/":
		return types.TInt, core.And(
			core.CEq{Left: left, Right: types.TInt},
			core.CEq{Left: right, Right: types.TInt},
		)
	case "==", "!=", "<", "<=", ">", ">=":
		return types.TBool, core.CEq{Left: left, Right: right}
	default:
		return types.TBool, core.CEq{Left: left, Right: right}
	}
}
