package soroban

// Complement5 returns the small friend of n: the value that makes 5 with it.
// Transition only asks for n in [1,4]. Outside that range the result is the
// plain difference 5-n: Complement5(5) is 0 and Complement5(0) is 5, and no
// step is ever built from those.
func Complement5(n int) int {
	return 5 - n
}

// Complement10 returns the big friend of n: the value that makes 10 with it.
// Carries and borrows only ask for n in [1,9], since a zero amount never
// overflows or underflows a column. Outside that range the result is the
// plain difference 10-n.
func Complement10(n int) int {
	return 10 - n
}
