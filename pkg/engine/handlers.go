package engine

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/command"
	"github.com/jwebster45206/adventure-engine/pkg/events"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

func (e *Engine) handleMove(cmd command.ParsedCommand) Result {
	if e.gs.Status == state.StatusCombat {
		return fail(MsgInCombat)
	}

	dir := cmd.Args[0]
	from := e.gs.CurrentLocation()
	to, found := from.Exits[dir]
	if !found {
		return fail(MsgNoExit)
	}
	if _, exists := e.gs.World.Location(to); !exists {
		// Validated worlds never get here.
		return fail(MsgNoExit)
	}

	e.gs.MovePlayer(to)
	e.emit(events.PlayerMoved, map[string]any{
		"from": from.Key,
		"to":   to,
	})

	res := e.describe()
	res.Message = fmt.Sprintf("You go %s.\n%s", dir, res.Message)
	return res
}

func (e *Engine) handleLook(_ command.ParsedCommand) Result {
	return e.describe()
}

// describe renders the current location.
func (e *Engine) describe() Result {
	loc := e.gs.CurrentLocation()
	items := e.gs.World.ItemNames(loc.Items)
	enemies := e.gs.World.LiveEnemyNames(loc.Key)
	exits := loc.ExitDirections()

	var b strings.Builder
	b.WriteString(loc.Name)
	if loc.Description != "" {
		b.WriteString("\n")
		b.WriteString(loc.Description)
	}
	if len(items) > 0 {
		fmt.Fprintf(&b, "\nYou see: %s.", strings.Join(items, ", "))
	}
	if len(enemies) > 0 {
		fmt.Fprintf(&b, "\nEnemies: %s.", strings.Join(enemies, ", "))
	}
	if len(exits) > 0 {
		fmt.Fprintf(&b, "\nExits: %s.", strings.Join(exits, ", "))
	} else {
		b.WriteString("\nThere is no way out.")
	}

	return ok(b.String(), map[string]any{
		"location":    loc.Key,
		"name":        loc.Name,
		"description": loc.Description,
		"items":       items,
		"enemies":     enemies,
		"exits":       exits,
	})
}

func (e *Engine) handleTake(cmd command.ParsedCommand) Result {
	loc := e.gs.CurrentLocation()
	item, found := e.gs.World.FindItem(loc.Items, cmd.Target())
	if !found {
		return fail(MsgItemNotHere)
	}
	if !item.Portable {
		return fail(MsgNotPortable)
	}
	if !e.gs.PickUp(item.Key) {
		return fail(MsgItemNotHere)
	}

	e.emit(events.ItemPickedUp, map[string]any{"item": item.Key})
	return ok(fmt.Sprintf("You take the %s.", item.Name), map[string]any{
		"item": item.Key,
	})
}

func (e *Engine) handleDrop(cmd command.ParsedCommand) Result {
	item, found := e.gs.World.FindItem(e.gs.Player.Inventory, cmd.Target())
	if !found {
		return fail(MsgNotCarrying)
	}
	if !e.gs.PutDown(item.Key) {
		return fail(MsgNotCarrying)
	}

	e.emit(events.ItemDropped, map[string]any{"item": item.Key})
	return ok(fmt.Sprintf("You drop the %s.", item.Name), map[string]any{
		"item": item.Key,
	})
}

func (e *Engine) handleUse(cmd command.ParsedCommand) Result {
	item, found := e.gs.World.FindItem(e.gs.Player.Inventory, cmd.Target())
	if !found {
		return fail(MsgNotCarrying)
	}

	if item.Kind != world.Consumable || item.Effect.Heal <= 0 {
		return ok(fmt.Sprintf("You turn the %s over in your hands. Nothing happens.", item.Name), map[string]any{
			"item": item.Key,
		})
	}

	healed := e.gs.Player.Heal(item.Effect.Heal)
	e.gs.Consume(item.Key)

	e.emit(events.ItemUsed, map[string]any{"item": item.Key})
	e.emit(events.PlayerHealed, map[string]any{
		"amount": healed,
		"health": e.gs.Player.Health,
	})
	return ok(fmt.Sprintf("You use the %s and recover %d health. Health: %d/%d.",
		item.Name, healed, e.gs.Player.Health, e.gs.Player.MaxHealth), map[string]any{
		"item":   item.Key,
		"amount": healed,
		"health": e.gs.Player.Health,
	})
}

func (e *Engine) handleInventory(_ command.ParsedCommand) Result {
	names := e.gs.World.ItemNames(e.gs.Player.Inventory)
	if len(names) == 0 {
		return ok(MsgEmptyInventory, map[string]any{"items": names})
	}
	return ok("You are carrying: "+strings.Join(names, ", ")+".", map[string]any{
		"items": names,
	})
}

func (e *Engine) handleStats(_ command.ParsedCommand) Result {
	p := e.gs.Player
	msg := fmt.Sprintf("Health: %d/%d\nAttack: %d\nStatus: %s\nLocation: %s\nVisited: %d",
		p.Health, p.MaxHealth, p.Attack, e.gs.Status, e.gs.CurrentLocation().Name, len(p.Visited))
	return ok(msg, map[string]any{
		"health":     p.Health,
		"max_health": p.MaxHealth,
		"attack":     p.Attack,
		"status":     string(e.gs.Status),
		"location":   p.Location,
		"visited":    len(p.Visited),
		"turn":       e.gs.Turn,
	})
}

func (e *Engine) handleAttack(cmd command.ParsedCommand) Result {
	enemy, found := e.gs.World.FindEnemy(e.gs.Player.Location, cmd.Target())
	if !found {
		return fail(MsgNoEnemy)
	}

	if e.gs.Status != state.StatusCombat || e.gs.CombatTarget != enemy.Key {
		e.gs.Status = state.StatusCombat
		e.gs.CombatTarget = enemy.Key
		e.emit(events.CombatStarted, map[string]any{"enemy": enemy.Key})
	}

	dealt := enemy.TakeDamage(e.gs.Player.Attack)
	e.emit(events.EnemyDamaged, map[string]any{
		"enemy":  enemy.Key,
		"amount": dealt,
		"health": enemy.Health,
	})

	if enemy.Health <= 0 {
		e.gs.DefeatEnemy(enemy)
		e.gs.Status = state.StatusPlaying
		e.gs.CombatTarget = ""
		e.emit(events.EnemyDefeated, map[string]any{"enemy": enemy.Key})
		e.emit(events.CombatEnded, map[string]any{"outcome": "victory"})
		return ok(fmt.Sprintf("You hit the %s for %d. The %s is defeated!", enemy.Name, dealt, enemy.Name), map[string]any{
			"enemy":   enemy.Key,
			"dealt":   dealt,
			"outcome": "victory",
		})
	}

	taken := e.gs.Player.TakeDamage(enemy.Attack)
	e.emit(events.PlayerDamaged, map[string]any{
		"amount": taken,
		"health": e.gs.Player.Health,
	})

	if e.gs.Player.IsDead() {
		e.gs.Status = state.StatusGameOver
		e.gs.CombatTarget = ""
		e.emit(events.CombatEnded, map[string]any{"outcome": "defeat"})
		e.emit(events.GameOver, map[string]any{"enemy": enemy.Key})
		return ok(fmt.Sprintf("You hit the %s for %d. The %s strikes back for %d. You have fallen.",
			enemy.Name, dealt, enemy.Name, taken), map[string]any{
			"enemy":   enemy.Key,
			"dealt":   dealt,
			"taken":   taken,
			"outcome": "defeat",
		})
	}

	return ok(fmt.Sprintf("You hit the %s for %d. The %s strikes back for %d. Your health: %d/%d. %s health: %d/%d.",
		enemy.Name, dealt, enemy.Name, taken,
		e.gs.Player.Health, e.gs.Player.MaxHealth,
		enemy.Name, enemy.Health, enemy.MaxHealth), map[string]any{
		"enemy":         enemy.Key,
		"dealt":         dealt,
		"taken":         taken,
		"player_health": e.gs.Player.Health,
		"enemy_health":  enemy.Health,
	})
}

func (e *Engine) handleHelp(_ command.ParsedCommand) Result {
	specs := command.Commands()
	lines := make([]string, 0, len(specs))
	for _, s := range specs {
		lines = append(lines, s.Usage)
	}
	return ok("Commands:\n"+strings.Join(lines, "\n"), map[string]any{
		"commands": specs,
	})
}

func (e *Engine) handleReset(_ command.ParsedCommand) Result {
	if err := e.Reset(); err != nil {
		e.logger.Error("Failed to reset world", "error", err)
		return fail("could not start a new game")
	}
	res := e.describe()
	res.Message = "A new adventure begins.\n" + res.Message
	return res
}
