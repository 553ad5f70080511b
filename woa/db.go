package woa

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	// TblAgents is the name of the sql database table that contains
	// positions and values for every agent at each iteration.
	TblAgents = "woaagents"
	// TblBest is the name of the sql database table that contains the
	// incumbent best position at each iteration.
	TblBest = "woabest"
)

func (it *Iterator) initdb() {
	if it.Db == nil {
		return
	}
	it.runid = uuid.NewString()

	s := "CREATE TABLE IF NOT EXISTS " + TblAgents + " (run TEXT, agent INTEGER, iter INTEGER, val REAL"
	s += it.xdbsql("define")
	s += ");"

	_, err := it.Db.Exec(s)
	panicif(err)

	s = "CREATE TABLE IF NOT EXISTS " + TblBest + " (run TEXT, iter INTEGER, val REAL"
	s += it.xdbsql("define")
	s += ");"
	_, err = it.Db.Exec(s)
	panicif(err)
}

func (it *Iterator) xdbsql(op string) string {
	s := ""
	for i := range it.Low {
		if op == "?" {
			s += ",?"
		} else if op == "define" {
			s += fmt.Sprintf(",x%v REAL", i)
		} else if op == "x" {
			s += fmt.Sprintf(",x%v", i)
		} else {
			panic("invalid db op " + op)
		}
	}
	return s
}

func (it *Iterator) updateDb() {
	if it.Db == nil {
		return
	}

	tx, err := it.Db.Begin()
	panicif(err)
	defer tx.Commit()

	s0 := "INSERT INTO " + TblAgents + " (run,agent,iter,val" + it.xdbsql("x") + ") VALUES (?,?,?,?" + it.xdbsql("?") + ");"
	for _, a := range it.Pop {
		args := []interface{}{it.runid, a.Id, it.count, a.Val}
		args = append(args, pos2iface(a.Pos())...)
		_, err := tx.Exec(s0, args...)
		panicif(err)
	}

	s1 := "INSERT INTO " + TblBest + " (run,iter,val" + it.xdbsql("x") + ") VALUES (?,?,?" + it.xdbsql("?") + ");"
	args := []interface{}{it.runid, it.count, it.best.Val}
	args = append(args, pos2iface(it.best.Pos())...)
	_, err = tx.Exec(s1, args...)
	panicif(err)
}

func pos2iface(pos []float64) []interface{} {
	iface := []interface{}{}
	for _, v := range pos {
		iface = append(iface, v)
	}
	return iface
}

func panicif(err error) {
	if err != nil {
		panic(err.Error())
	}
}
