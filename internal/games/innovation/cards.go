package innovation

import "github.com/roach88/splay/internal/spec"

// Card colors and icons of the base game.
var (
	Colors = []string{"red", "yellow", "green", "blue", "purple"}
	Icons  = []string{"castle", "crown", "leaf", "lightbulb", "factory", "clock"}
)

// Step construction helpers. Card text maps onto the effect DSL almost
// line for line; the helpers keep the definitions readable.

func draw(id string, count int, age string) spec.EffectStep {
	d := &spec.DrawStep{Count: count}
	if age != "" {
		d.Age = spec.E(age)
	}
	return spec.EffectStep{ID: id, Kind: spec.StepDraw, Draw: d}
}

func drawReveal(id string, count int, age string) spec.EffectStep {
	step := draw(id, count, age)
	step.Draw.Reveal = true
	return step
}

func meld(id, cardSource string) spec.EffectStep {
	return spec.EffectStep{ID: id, Kind: spec.StepMeld, Meld: &spec.MoveStep{CardSource: spec.E(cardSource)}}
}

func tuck(id, cardSource string) spec.EffectStep {
	return spec.EffectStep{ID: id, Kind: spec.StepTuck, Tuck: &spec.MoveStep{CardSource: spec.E(cardSource)}}
}

func ret(id, cardSource string) spec.EffectStep {
	return spec.EffectStep{ID: id, Kind: spec.StepReturn, Return: &spec.MoveStep{CardSource: spec.E(cardSource)}}
}

func score(id, cardSource string) spec.EffectStep {
	return spec.EffectStep{ID: id, Kind: spec.StepScore, Score: &spec.MoveStep{CardSource: spec.E(cardSource)}}
}

func chooseCard(id, source string, optional bool, prompt string) spec.EffectStep {
	return spec.EffectStep{ID: id, Kind: spec.StepChooseCard, Choose: &spec.ChoiceSpec{
		Source:   spec.E(source),
		Optional: optional,
		Prompt:   prompt,
	}}
}

func chooseCardFiltered(id, source, filter string, optional bool, prompt string) spec.EffectStep {
	step := chooseCard(id, source, optional, prompt)
	step.Choose.Filter = spec.E(filter)
	return step
}

func choosePlayer(id, source, prompt string) spec.EffectStep {
	return spec.EffectStep{ID: id, Kind: spec.StepChoosePlayer, Choose: &spec.ChoiceSpec{
		Source: spec.E(source),
		Prompt: prompt,
	}}
}

func chooseOption(id string, options []string, prompt string) spec.EffectStep {
	return spec.EffectStep{ID: id, Kind: spec.StepChooseOption, Choose: &spec.ChoiceSpec{
		Options: options,
		Prompt:  prompt,
	}}
}

func when(id, condition string, then []spec.EffectStep, els ...spec.EffectStep) spec.EffectStep {
	return spec.EffectStep{ID: id, Kind: spec.StepConditional, Conditional: &spec.ConditionalStep{
		Condition: spec.E(condition),
		Then:      then,
		Else:      els,
	}}
}

func transfer(id, cardSource, fromZone, toZone, toPlayer string) spec.EffectStep {
	return spec.EffectStep{ID: id, Kind: spec.StepTransfer, Transfer: &spec.TransferStep{
		CardSource: spec.E(cardSource),
		FromZone:   fromZone,
		ToZone:     toZone,
		ToPlayer:   toPlayer,
	}}
}

func splay(id, colorExpr, direction string) spec.EffectStep {
	return spec.EffectStep{ID: id, Kind: spec.StepSplay, Splay: &spec.SplayStep{
		Color:     spec.E(colorExpr),
		Direction: direction,
	}}
}

func demand(id string, body []spec.EffectStep) spec.EffectStep {
	return spec.EffectStep{ID: id, Kind: spec.StepDemand, Demand: &spec.DemandStep{Body: body}}
}

func dogma(id, name, icon, description string, steps ...spec.EffectStep) spec.Effect {
	return spec.Effect{
		ID:          id,
		Name:        name,
		Description: description,
		Type:        spec.EffectDogma,
		TriggerIcon: icon,
		Steps:       steps,
	}
}

func card(id, name string, age int, color string, icons map[string]string, effects ...spec.Effect) spec.CardDefinition {
	return spec.CardDefinition{ID: id, Name: name, Age: age, Color: color, Icons: icons, Effects: effects}
}

// Cards returns the card set: the base-game cards of ages 1 through 3
// that the automa currently knows how to read from the table.
func Cards() []spec.CardDefinition {
	return []spec.CardDefinition{
		// Age 1.
		card("archery", "Archery", 1, "red",
			map[string]string{"top_left": "castle", "bottom_left": "lightbulb", "bottom_right": "castle"},
			dogma("archery_dogma", "Archery Dogma", "castle",
				"I demand you draw a 1, then transfer the highest card in your hand to my hand!",
				demand("archery_demand", []spec.EffectStep{
					draw("archery_demand_draw", 1, "1"),
					transfer("archery_demand_transfer", "highest_card(player.hand)", "hand", "hand", "demanding_player"),
				}),
			),
		),

		card("metalworking", "Metalworking", 1, "red",
			map[string]string{"top_left": "castle", "bottom_left": "castle", "bottom_right": "castle"},
			dogma("metalworking_dogma", "Metalworking Dogma", "castle",
				"Draw and reveal a 1. If it has a castle, score it and repeat this dogma effect.",
				drawReveal("metalworking_draw", 1, "1"),
				when("metalworking_check", "drawn_card.icon_count.castle > 0",
					[]spec.EffectStep{
						score("metalworking_score", "drawn_card"),
						{ID: "metalworking_again", Kind: spec.StepExecuteEffect,
							ExecuteEffect: &spec.ExecuteEffectStep{EffectID: "metalworking_dogma"}},
					},
				),
			),
		),

		card("oars", "Oars", 1, "red",
			map[string]string{"top_left": "castle", "bottom_left": "crown", "bottom_right": "castle"},
			dogma("oars_dogma", "Oars Dogma", "castle",
				"I demand you transfer a card with a crown from your hand to my score pile! If you do, draw a 1.",
				demand("oars_demand", []spec.EffectStep{
					chooseCardFiltered("oars_choose", "player.hand", "candidate.icon_count.crown > 0", false,
						"Choose a card with a crown to transfer"),
					when("oars_if_chosen", "choice_made",
						[]spec.EffectStep{
							transfer("oars_transfer", "chosen_card", "hand", "score_pile", "demanding_player"),
							draw("oars_draw", 1, "1"),
						},
					),
				}),
			),
		),

		card("writing", "Writing", 1, "blue",
			map[string]string{"bottom_left": "lightbulb", "bottom_center": "lightbulb", "bottom_right": "crown"},
			dogma("writing_dogma", "Writing Dogma", "lightbulb",
				"Draw a 2.",
				draw("writing_draw", 1, "2"),
			),
		),

		card("the_wheel", "The Wheel", 1, "green",
			map[string]string{"bottom_left": "castle", "bottom_center": "castle"},
			dogma("the_wheel_dogma", "The Wheel Dogma", "castle",
				"Draw two 1s.",
				draw("wheel_draw", 2, "1"),
			),
		),

		card("code_of_laws", "Code of Laws", 1, "purple",
			map[string]string{"bottom_left": "crown", "bottom_center": "crown", "bottom_right": "leaf"},
			dogma("code_of_laws_dogma", "Code of Laws Dogma", "crown",
				"You may tuck a card from your hand of the same color as a card on your board. If you do, you may splay that color left.",
				chooseCardFiltered("laws_choose", "player.hand", "board_has_color(candidate.color)", true,
					"Choose a card matching a board color to tuck (optional)"),
				when("laws_if_tucked", "choice_made",
					[]spec.EffectStep{
						{ID: "laws_remember_color", Kind: spec.StepSetVariable,
							SetVariable: &spec.SetVariableStep{Name: "tucked_color", Value: spec.E("chosen_card.color")}},
						tuck("laws_tuck", "chosen_card"),
						chooseOption("laws_splay_choice", []string{"splay_left", "keep"}, "Splay that color left?"),
						when("laws_if_splay", "chosen_option == 'splay_left'",
							[]spec.EffectStep{
								splay("laws_splay", "tucked_color", "left"),
							},
						),
					},
				),
			),
		),

		card("sailing", "Sailing", 1, "green",
			map[string]string{"top_left": "crown", "bottom_left": "crown", "bottom_right": "leaf"},
			dogma("sailing_dogma", "Sailing Dogma", "crown",
				"Draw and meld a 1.",
				draw("sailing_draw", 1, "1"),
				meld("sailing_meld", "drawn_card"),
			),
		),

		card("agriculture", "Agriculture", 1, "yellow",
			map[string]string{"bottom_left": "leaf", "bottom_center": "leaf", "bottom_right": "leaf"},
			dogma("agriculture_dogma", "Agriculture Dogma", "leaf",
				"You may return a card from your hand. If you do, draw and score a card of value one higher.",
				chooseCard("agriculture_choose", "player.hand", true, "Choose a card to return (optional)"),
				when("agriculture_if_returned", "choice_made",
					[]spec.EffectStep{
						ret("agriculture_return", "chosen_card"),
						draw("agriculture_draw", 1, "returned_age + 1"),
						score("agriculture_score", "drawn_card"),
					},
				),
			),
		),

		card("domestication", "Domestication", 1, "yellow",
			map[string]string{"top_left": "castle", "bottom_left": "crown", "bottom_right": "castle"},
			dogma("domestication_dogma", "Domestication Dogma", "castle",
				"Meld the lowest card in your hand. Draw a 1.",
				when("domestication_if_hand", "player.hand.count > 0",
					[]spec.EffectStep{
						meld("domestication_meld", "lowest_card(player.hand)"),
					},
				),
				draw("domestication_draw", 1, "1"),
			),
		),

		// Age 2.
		card("calendar", "Calendar", 2, "blue",
			map[string]string{"bottom_left": "leaf", "bottom_center": "leaf", "bottom_right": "lightbulb"},
			dogma("calendar_dogma", "Calendar Dogma", "leaf",
				"If you have more cards in your score pile than in your hand, draw two 3s.",
				when("calendar_check", "player.score_pile.count > player.hand.count",
					[]spec.EffectStep{
						draw("calendar_draw", 2, "3"),
					},
				),
			),
		),

		card("road_building", "Road Building", 2, "red",
			map[string]string{"top_left": "castle", "bottom_left": "castle", "bottom_right": "castle"},
			dogma("road_building_dogma", "Road Building Dogma", "castle",
				"Meld one or two cards from your hand. If you melded two, transfer your top red or yellow card to another player's board.",
				chooseCard("roads_choose_first", "player.hand", false, "Choose a card to meld"),
				when("roads_if_first", "choice_made",
					[]spec.EffectStep{
						meld("roads_meld_first", "chosen_card"),
						chooseCard("roads_choose_second", "player.hand", true, "Choose another card to meld (optional)"),
						when("roads_if_second", "choice_made",
							[]spec.EffectStep{
								meld("roads_meld_second", "chosen_card"),
								chooseOption("roads_choose_color", []string{"red", "yellow"}, "Transfer which top card?"),
								choosePlayer("roads_choose_recipient", "other_players", "Transfer to which player?"),
								{
									ID: "roads_transfer", Kind: spec.StepTransfer,
									Condition: spec.E("stack_count(chosen_option) > 0"),
									Transfer: &spec.TransferStep{
										CardSource: spec.E("top_card(chosen_option)"),
										FromZone:   "board",
										ToZone:     "board",
										ToPlayer:   "chosen_player",
									},
								},
							},
						),
					},
				),
			),
		),

		card("currency", "Currency", 2, "green",
			map[string]string{"top_left": "leaf", "bottom_left": "crown", "bottom_right": "crown"},
			dogma("currency_dogma", "Currency Dogma", "crown",
				"You may return up to three cards from your hand. If you returned any, draw and score a 2.",
				spec.EffectStep{ID: "currency_choose", Kind: spec.StepChooseCard, Choose: &spec.ChoiceSpec{
					Source:   spec.E("player.hand"),
					Min:      0,
					Max:      3,
					Optional: true,
					Prompt:   "Choose up to three cards to return",
				}},
				spec.EffectStep{ID: "currency_return_each", Kind: spec.StepForEach,
					Condition: spec.E("choice_made"),
					ForEach: &spec.ForEachStep{
						Var:    "returning",
						Source: spec.E("chosen"),
						Body: []spec.EffectStep{
							ret("currency_return", "returning"),
						},
					}},
				when("currency_if_returned", "choice_made",
					[]spec.EffectStep{
						draw("currency_draw", 1, "2"),
						score("currency_score", "drawn_card"),
					},
				),
			),
		),

		card("mapmaking", "Mapmaking", 2, "green",
			map[string]string{"top_left": "crown", "bottom_left": "crown", "bottom_right": "castle"},
			dogma("mapmaking_dogma", "Mapmaking Dogma", "crown",
				"I demand you transfer a 1 from your score pile to my score pile!",
				demand("mapmaking_demand", []spec.EffectStep{
					chooseCardFiltered("mapmaking_choose", "player.score_pile", "candidate.age == 1", false,
						"Choose a 1 from your score pile to transfer"),
					when("mapmaking_if_chosen", "choice_made",
						[]spec.EffectStep{
							transfer("mapmaking_transfer", "chosen_card", "score_pile", "score_pile", "demanding_player"),
						},
					),
				}),
			),
		),

		// Age 3.
		card("optics", "Optics", 3, "red",
			map[string]string{"top_left": "crown", "bottom_left": "crown", "bottom_right": "crown"},
			dogma("optics_dogma", "Optics Dogma", "crown",
				"Draw and meld a 3. If it has a crown, draw and score a 4. Otherwise, transfer a card from your score pile to an opponent.",
				draw("optics_draw", 1, "3"),
				meld("optics_meld", "drawn_card"),
				when("optics_check_crown", "drawn_card.icon_count.crown > 0",
					[]spec.EffectStep{
						draw("optics_bonus_draw", 1, "4"),
						score("optics_bonus_score", "drawn_card"),
					},
					when("optics_if_score_pile", "player.score_pile.count > 0",
						[]spec.EffectStep{
							chooseCard("optics_choose_card", "player.score_pile", false, "Choose a card to give away"),
							choosePlayer("optics_choose_player", "other_players", "Give it to which player?"),
							transfer("optics_transfer", "chosen_card", "score_pile", "score_pile", "chosen_player"),
						},
					),
				),
			),
		),

		card("paper", "Paper", 3, "green",
			map[string]string{"bottom_left": "lightbulb", "bottom_center": "lightbulb", "bottom_right": "crown"},
			dogma("paper_dogma", "Paper Dogma", "lightbulb",
				"You may splay your green or blue cards left. If you do, draw a 4.",
				chooseOption("paper_choose", []string{"green", "blue", "skip"}, "Splay which color left?"),
				when("paper_if_splay", "chosen_option != 'skip' and stack_count(chosen_option) >= 2",
					[]spec.EffectStep{
						splay("paper_splay", "chosen_option", "left"),
						draw("paper_draw", 1, "4"),
					},
				),
			),
		),

		card("engineering", "Engineering", 3, "red",
			map[string]string{"top_left": "castle", "bottom_left": "castle", "bottom_right": "lightbulb"},
			dogma("engineering_dogma", "Engineering Dogma", "castle",
				"I demand you transfer all your top cards with a castle to my score pile!",
				demand("engineering_demand", []spec.EffectStep{
					{ID: "engineering_each", Kind: spec.StepForEach, ForEach: &spec.ForEachStep{
						Var:    "castle_card",
						Source: spec.E("top_cards_with_icon('castle')"),
						Body: []spec.EffectStep{
							transfer("engineering_transfer", "castle_card", "board", "score_pile", "demanding_player"),
						},
					}},
				}),
			),
		),
	}
}
