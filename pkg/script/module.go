package script

import (
	"errors"
	"math"
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/nativeui-go/nativeui/pkg/bridge"
	"github.com/nativeui-go/nativeui/pkg/wire"
)

const entityTypeName = "nativeui.entity"

func (r *Runtime) register() {
	L := r.L

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"create":    r.create,
		"entity":    r.entity,
		"get":       r.get,
		"whenReady": r.whenReady,
	})
	L.SetField(mod, "FILL_PARENT", lua.LNumber(-1))
	L.SetGlobal("nativeui", mod)

	mt := L.NewTypeMetatable(entityTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), r.entityMethods()))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		e := r.checkEntity(L)
		L.Push(lua.LString(e.Type() + "(" + e.ID() + ")"))
		return 1
	}))
}

// nativeui.create(type [, id [, params [, onSuccess [, onError]]]])
func (r *Runtime) create(L *lua.LState) int {
	typ := L.CheckString(1)
	id := L.OptString(2, "")
	params := stringMap(L.OptTable(3, nil))
	e, err := r.session.Create(typ, id, params, r.callback(L, 4))
	if e == nil {
		return pushResult(L, err)
	}
	L.Push(r.wrap(e))
	if err != nil {
		L.Push(lua.LString(err.Error()))
		return 2
	}
	return 1
}

// nativeui.entity(type [, id [, isRoot]]) declares an entity without
// creating it.
func (r *Runtime) entity(L *lua.LState) int {
	typ := L.CheckString(1)
	id := L.OptString(2, "")
	var opts []bridge.EntityOption
	if L.GetTop() >= 3 {
		opts = append(opts, bridge.WithContainerRoot(L.CheckBool(3)))
	}
	e, err := r.session.NewEntity(typ, id, opts...)
	if err != nil {
		return pushResult(L, err)
	}
	L.Push(r.wrap(e))
	return 1
}

// nativeui.get(id)
func (r *Runtime) get(L *lua.LState) int {
	e, ok := r.session.Entity(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(r.wrap(e))
	return 1
}

// nativeui.whenReady(fn) runs fn once no create is outstanding.
func (r *Runtime) whenReady(L *lua.LState) int {
	fn := L.CheckFunction(1)
	r.session.WhenAllCreated(func() { r.invoke(fn) })
	return 0
}

func (r *Runtime) entityMethods() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"id": func(L *lua.LState) int {
			L.Push(lua.LString(r.checkEntity(L).ID()))
			return 1
		},
		"type": func(L *lua.LState) int {
			L.Push(lua.LString(r.checkEntity(L).Type()))
			return 1
		},
		"handle": func(L *lua.LState) int {
			L.Push(lua.LNumber(r.checkEntity(L).Handle()))
			return 1
		},
		"state": func(L *lua.LState) int {
			L.Push(lua.LString(r.checkEntity(L).State().String()))
			return 1
		},
		"isRoot": func(L *lua.LState) int {
			L.Push(lua.LBool(r.checkEntity(L).IsContainerRoot()))
			return 1
		},
		"create": func(L *lua.LState) int {
			e := r.checkEntity(L)
			return pushResult(L, e.Create(r.callback(L, 2)))
		},
		"setProperty": func(L *lua.LState) int {
			e := r.checkEntity(L)
			name := L.CheckString(2)
			value := toString(L.CheckAny(3))
			return pushResult(L, e.SetProperty(name, value, r.callback(L, 4)))
		},
		"setProperties": func(L *lua.LState) int {
			e := r.checkEntity(L)
			props := stringMap(L.CheckTable(2))
			return pushResult(L, e.SetProperties(props, r.callback(L, 3)))
		},
		"setImage": func(L *lua.LState) int {
			e := r.checkEntity(L)
			return pushResult(L, e.SetImage(L.CheckString(2), L.CheckString(3), r.callback(L, 4)))
		},
		"getProperty": func(L *lua.LState) int {
			e := r.checkEntity(L)
			return pushResult(L, e.GetProperty(L.CheckString(2), r.callback(L, 3)))
		},
		"addChild": func(L *lua.LState) int {
			e := r.checkEntity(L)
			return pushResult(L, e.AddChild(r.checkRef(L, 2), r.callback(L, 3)))
		},
		"insertChild": func(L *lua.LState) int {
			e := r.checkEntity(L)
			child := r.checkRef(L, 2)
			index := L.CheckInt(3)
			if index < math.MinInt32 || index > math.MaxInt32 {
				L.ArgError(3, "index out of range")
				return 0
			}
			return pushResult(L, e.InsertChild(child, int32(index), r.callback(L, 4)))
		},
		"removeChild": func(L *lua.LState) int {
			e := r.checkEntity(L)
			return pushResult(L, e.RemoveChild(r.checkRef(L, 2), r.callback(L, 3)))
		},
		"show": func(L *lua.LState) int {
			e := r.checkEntity(L)
			return pushResult(L, e.Show(r.callback(L, 2)))
		},
		"addTo": func(L *lua.LState) int {
			e := r.checkEntity(L)
			return pushResult(L, e.AttachTo(r.checkRef(L, 2), r.callback(L, 3)))
		},
		"addEventListener": func(L *lua.LState) int {
			e := r.checkEntity(L)
			typ := wire.EventType(L.CheckString(2))
			fn := L.CheckFunction(3)
			listener := func(ev wire.Event) { r.invoke(fn, r.eventTable(ev)) }
			return pushResult(L, e.AddEventListener(typ, listener, r.callback(L, 4)))
		},
		"pushScreen": func(L *lua.LState) int {
			e := r.checkEntity(L)
			return pushResult(L, e.PushScreen(r.checkRef(L, 2), r.callback(L, 3)))
		},
		"popScreen": func(L *lua.LState) int {
			e := r.checkEntity(L)
			return pushResult(L, e.PopScreen(r.callback(L, 2)))
		},
		"showDialog": func(L *lua.LState) int {
			e := r.checkEntity(L)
			return pushResult(L, e.ShowDialog(r.callback(L, 2)))
		},
		"hideDialog": func(L *lua.LState) int {
			e := r.checkEntity(L)
			return pushResult(L, e.HideDialog(r.callback(L, 2)))
		},
		"destroy": func(L *lua.LState) int {
			e := r.checkEntity(L)
			cb := r.callback(L, 2)
			onSuccess := cb.OnSuccess
			cb.OnSuccess = func(rep bridge.Reply) {
				delete(r.entities, e)
				onSuccess(rep)
			}
			return pushResult(L, e.Destroy(cb))
		},
	}
}

// wrap returns the userdata for e, creating it on first use.
func (r *Runtime) wrap(e *bridge.Entity) *lua.LUserData {
	if ud, ok := r.entities[e]; ok {
		return ud
	}
	ud := r.L.NewUserData()
	ud.Value = e
	r.L.SetMetatable(ud, r.L.GetTypeMetatable(entityTypeName))
	r.entities[e] = ud
	return ud
}

func (r *Runtime) checkEntity(L *lua.LState) *bridge.Entity {
	ud := L.CheckUserData(1)
	e, ok := ud.Value.(*bridge.Entity)
	if !ok {
		L.ArgError(1, "entity expected")
		return nil
	}
	return e
}

// checkRef accepts an entity or an entity id.
func (r *Runtime) checkRef(L *lua.LState, n int) string {
	switch v := L.Get(n).(type) {
	case lua.LString:
		return string(v)
	case *lua.LUserData:
		if e, ok := v.Value.(*bridge.Entity); ok {
			return e.ID()
		}
	}
	L.ArgError(n, "entity or entity id expected")
	return ""
}

// callback builds a bridge callback from the optional Lua functions at
// positions n and n+1.
func (r *Runtime) callback(L *lua.LState, n int) bridge.Callback {
	onSuccess := L.OptFunction(n, nil)
	onError := L.OptFunction(n+1, nil)
	return bridge.Callback{
		OnSuccess: func(rep bridge.Reply) {
			if onSuccess != nil {
				r.invoke(onSuccess, r.replyTable(rep))
			}
		},
		OnError: func(err error) {
			if onError == nil {
				if r.config.Logger != nil {
					r.config.Logger.Debug("unhandled operation error", "error", err)
				}
				return
			}
			args := []lua.LValue{lua.LString(err.Error())}
			var ne *bridge.NativeError
			if errors.As(err, &ne) {
				args = append(args, lua.LNumber(ne.Code))
			}
			r.invoke(onError, args...)
		},
	}
}

func (r *Runtime) replyTable(rep bridge.Reply) *lua.LTable {
	t := r.L.NewTable()
	t.RawSetString("callId", lua.LString(rep.CallID))
	t.RawSetString("entityId", lua.LString(rep.EntityID))
	t.RawSetString("handle", lua.LNumber(rep.Handle))
	t.RawSetString("code", lua.LNumber(rep.Code))
	t.RawSetString("value", lua.LString(rep.Value))
	return t
}

func (r *Runtime) eventTable(ev wire.Event) *lua.LTable {
	t := r.L.NewTable()
	t.RawSetString("handle", lua.LNumber(ev.Handle))
	t.RawSetString("type", lua.LString(ev.Type))
	data := r.L.NewTable()
	for _, d := range ev.Data {
		data.Append(lua.LNumber(d))
	}
	t.RawSetString("data", data)
	return t
}

// pushResult pushes true, or nil and the error message.
func pushResult(L *lua.LState, err error) int {
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

func toString(v lua.LValue) string {
	switch v := v.(type) {
	case lua.LBool:
		return strconv.FormatBool(bool(v))
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return v.String()
	}
}

func stringMap(t *lua.LTable) map[string]string {
	if t == nil {
		return nil
	}
	m := make(map[string]string)
	t.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			m[string(ks)] = toString(v)
		}
	})
	return m
}
