package types

// StateSnapshot:
//   version: number
//   auto: boolean
//   state:
//     groups: { name: "A".."L", teams: Team[] }[]
//     pot_index: 0..4            // 4 once the draw is finished
//     remaining: Team[]          // current pot, not yet drawn
//     pending?: { team: Team, group_index: number }
//     unplaced?: Team[]          // batch mode could not seat these
//     finished: boolean
//     rules: { lookahead: boolean }
//   validation?:                 // present once finished
//     valid: boolean
//     errors: string[]           // "Group C: No UEFA team (requires at least 1)"
//     violations?: { group, kind, message }[]
//
// Team:
//   id: string                   // "<name>-<pot>"
//   name: string
//   pot: 1..4
//   confederation: "UEFA" | "CONMEBOL" | "CONCACAF" | "CAF" | "AFC" | "OFC"
//   flag?: string
