package internal

import "errors"

// Visitor is called when Walk enters a node and when it leaves it.
type Visitor interface {
	Enter(node Node) error
	Leave(node Node) error
}

// SkipChildren returned by Enter stops Walk from descending into the node. Leave is still called.
var SkipChildren = errors.New("skip children")

// Walk visits node and every node under it in source order. It only descends into positions that
// are evaluated: declared names, field names, record keys and parameter names are tokens, not
// nodes, so a visitor sees every Identifier as a reference.
func Walk(visitor Visitor, node Node) error {
	err := visitor.Enter(node)
	if err == SkipChildren {
		return visitor.Leave(node)
	}
	if err != nil {
		return err
	}
	for _, child := range children(node) {
		if child == nil {
			continue
		}
		if err := Walk(visitor, child); err != nil {
			return err
		}
	}
	return visitor.Leave(node)
}

func children(node Node) []Node {
	var ret []Node
	addExpression := func(expressions ...Expression) {
		for _, expression := range expressions {
			if expression != nil {
				ret = append(ret, expression)
			}
		}
	}
	addBlock := func(block Block) {
		for _, statement := range block {
			ret = append(ret, statement)
		}
	}
	switch node := node.(type) {
	case *Module:
		addBlock(node.Body)
	case *VarStatement:
		addExpression(node.Value)
	case *DefStatement:
		addExpression(node.Value)
	case *LetStatement:
		addExpression(node.Target, node.Value)
	case *IfStatement:
		addExpression(node.Condition)
		addBlock(node.Then)
		if node.ElseIf != nil {
			ret = append(ret, node.ElseIf)
		}
		addBlock(node.Else)
	case *LoopStatement:
		addBlock(node.Body)
	case *ReturnStatement:
		addExpression(node.Value)
	case *CallStatement:
		addExpression(node.Call)
	case *BinaryExpression:
		addExpression(node.Left, node.Right, node.Else)
		addExpression(node.Arguments...)
	case *ArrayLiteral:
		addExpression(node.Elements...)
		for _, row := range node.Rows {
			addExpression(row...)
		}
	case *RecordLiteral:
		for _, property := range node.Properties {
			addExpression(property.Computed, property.Value)
		}
	case *FunctionLiteral:
		for _, parameter := range node.Parameters {
			addExpression(parameter.Default)
		}
		addExpression(node.Expression)
		addBlock(node.Body)
		addBlock(node.Failure)
	}
	return ret
}

// inspector adapts a function to a Visitor that only cares about entering nodes.
type inspector func(node Node) error

func (f inspector) Enter(node Node) error { return f(node) }
func (f inspector) Leave(node Node) error { return nil }

// Inspect calls f for every node under node, in source order.
func Inspect(node Node, f func(node Node) error) error {
	return Walk(inspector(f), node)
}
