package app

// PlayersPerMatch is the number of seats that must be filled before a match can start.
const PlayersPerMatch = 2
