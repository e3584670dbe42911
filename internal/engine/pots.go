package engine

import "fmt"

var GroupNames = [NumGroups]string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}

// HostSeat pins a pot 1 team to a group before the draw starts.
type HostSeat struct {
	TeamID     string
	GroupIndex int
}

type Registry struct {
	Pots  [NumPots][]Team
	Hosts []HostSeat
}

func team(name string, pot int, c Confederation, flag string) Team {
	return Team{ID: fmt.Sprintf("%s-%d", name, pot), Name: name, Pot: pot, Confederation: c, Flag: flag}
}

var WorldCup2026 = Registry{
	Pots: [NumPots][]Team{
		{
			team("Canada (Host)", 1, CONCACAF, "🇨🇦"),
			team("Mexico (Host)", 1, CONCACAF, "🇲🇽"),
			team("USA (Host)", 1, CONCACAF, "🇺🇸"),
			team("Spain", 1, UEFA, "🇪🇸"),
			team("Argentina", 1, CONMEBOL, "🇦🇷"),
			team("France", 1, UEFA, "🇫🇷"),
			team("England", 1, UEFA, "🏴󠁧󠁢󠁥󠁮󠁧󠁿"),
			team("Brazil", 1, CONMEBOL, "🇧🇷"),
			team("Portugal", 1, UEFA, "🇵🇹"),
			team("Netherlands", 1, UEFA, "🇳🇱"),
			team("Belgium", 1, UEFA, "🇧🇪"),
			team("Germany", 1, UEFA, "🇩🇪"),
		},
		{
			team("Croatia", 2, UEFA, "🇭🇷"),
			team("Morocco", 2, CAF, "🇲🇦"),
			team("Colombia", 2, CONMEBOL, "🇨🇴"),
			team("Uruguay", 2, CONMEBOL, "🇺🇾"),
			team("Switzerland", 2, UEFA, "🇨🇭"),
			team("Japan", 2, AFC, "🇯🇵"),
			team("Senegal", 2, CAF, "🇸🇳"),
			team("Iran", 2, AFC, "🇮🇷"),
			team("South Korea", 2, AFC, "🇰🇷"),
			team("Ecuador", 2, CONMEBOL, "🇪🇨"),
			team("Austria", 2, UEFA, "🇦🇹"),
			team("Australia", 2, AFC, "🇦🇺"),
		},
		{
			team("Norway", 3, UEFA, "🇳🇴"),
			team("Panama", 3, CONCACAF, "🇵🇦"),
			team("Egypt", 3, CAF, "🇪🇬"),
			team("Algeria", 3, CAF, "🇩🇿"),
			team("Scotland", 3, UEFA, "🏴󠁧󠁢󠁳󠁣󠁴󠁿"),
			team("Paraguay", 3, CONMEBOL, "🇵🇾"),
			team("Tunisia", 3, CAF, "🇹🇳"),
			team("Ivory Coast", 3, CAF, "🇨🇮"),
			team("Uzbekistan", 3, AFC, "🇺🇿"),
			team("Qatar", 3, AFC, "🇶🇦"),
			team("Saudi Arabia", 3, AFC, "🇸🇦"),
			team("South Africa", 3, CAF, "🇿🇦"),
		},
		{
			team("Italy*", 4, UEFA, "🇮🇹"),
			team("Turkiye*", 4, UEFA, "🇹🇷"),
			team("Ukraine*", 4, UEFA, "🇺🇦"),
			team("Poland*", 4, UEFA, "🇵🇱"),
			team("DR Congo*", 4, CAF, "🇨🇩"),
			team("Jordan", 4, AFC, "🇯🇴"),
			team("Cape Verde", 4, CAF, "🇨🇻"),
			team("Jamaica*", 4, CONCACAF, "🇯🇲"),
			team("Ghana", 4, CAF, "🇬🇭"),
			team("Curacao", 4, CONCACAF, "🇨🇼"),
			team("Haiti", 4, CONCACAF, "🇭🇹"),
			team("New Zealand", 4, OFC, "🇳🇿"),
		},
	},
	// Mexico opens in A1, Canada in B1, USA in D1.
	Hosts: []HostSeat{
		{TeamID: "Mexico (Host)-1", GroupIndex: 0},
		{TeamID: "Canada (Host)-1", GroupIndex: 1},
		{TeamID: "USA (Host)-1", GroupIndex: 3},
	},
}

// Team looks a team up by ID across all pots.
func (r *Registry) Team(id string) (Team, bool) {
	for _, pot := range r.Pots {
		for _, t := range pot {
			if t.ID == id {
				return t, true
			}
		}
	}
	return Team{}, false
}

// Teams returns every team in pot order.
func (r *Registry) Teams() []Team {
	var out []Team
	for _, pot := range r.Pots {
		out = append(out, pot...)
	}
	return out
}
