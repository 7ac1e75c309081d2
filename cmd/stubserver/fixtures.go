package main

func fixtureDealers() []string {
	return []string{"d1", "d2", "d3"}
}

func fixtureGoods() []good {
	return []good{
		{ID: "g1", Name: "Winter tires", Price: 120, Logo: "tires.png", Dealer: "d1", DealerName: "Northside Auto"},
		{ID: "g2", Name: "Wiper blades", Price: 8.5, Dealer: "d1", DealerName: "Northside Auto"},
		{ID: "g3", Name: "Roof rack", Price: 240, Logo: "/img/rack.png", Dealer: "d2", DealerName: "Eastgate Parts"},
		{ID: "g4", Name: "Air freshener", Price: 3, Dealer: "d2", DealerName: "Eastgate Parts"},
		{ID: "g5", Name: "Floor mats", Price: 45, Dealer: "d3", DealerName: "Hilltop Motors"},
		{ID: "g6", Name: "Phone mount", Price: 15, Logo: "https://cdn.example.com/mount.png", Dealer: "d3", DealerName: "Hilltop Motors"},
		{ID: "g7", Name: "Ice scraper", Price: 6},
	}
}
