package syllabus

import "github.com/verte-zerg/trackly/internal/model"

var builtin = map[model.Subject][]string{
	model.Physics: {
		"Units and Measurements",
		"Kinematics",
		"Laws of Motion",
		"Work, Energy and Power",
		"Rotational Motion",
		"Gravitation",
		"Properties of Solids and Fluids",
		"Thermodynamics",
		"Kinetic Theory of Gases",
		"Oscillations and Waves",
		"Electrostatics",
		"Current Electricity",
		"Magnetic Effects of Current",
		"Electromagnetic Induction",
		"Alternating Current",
		"Electromagnetic Waves",
		"Ray Optics",
		"Wave Optics",
		"Dual Nature of Matter",
		"Atoms and Nuclei",
		"Semiconductors",
	},
	model.Chemistry: {
		"Mole Concept",
		"Atomic Structure",
		"Periodic Table",
		"Chemical Bonding",
		"States of Matter",
		"Thermodynamics",
		"Chemical Equilibrium",
		"Ionic Equilibrium",
		"Redox Reactions",
		"Electrochemistry",
		"Chemical Kinetics",
		"Solutions",
		"s-Block Elements",
		"p-Block Elements",
		"d- and f-Block Elements",
		"Coordination Compounds",
		"General Organic Chemistry",
		"Hydrocarbons",
		"Haloalkanes and Haloarenes",
		"Alcohols, Phenols and Ethers",
		"Aldehydes and Ketones",
		"Amines",
		"Biomolecules",
	},
	model.Maths: {
		"Sets and Relations",
		"Complex Numbers",
		"Quadratic Equations",
		"Sequences and Series",
		"Permutations and Combinations",
		"Binomial Theorem",
		"Matrices and Determinants",
		"Trigonometry",
		"Straight Lines",
		"Circles",
		"Conic Sections",
		"Limits and Continuity",
		"Differentiation",
		"Applications of Derivatives",
		"Indefinite Integration",
		"Definite Integration",
		"Differential Equations",
		"Vectors",
		"Three Dimensional Geometry",
		"Probability",
		"Statistics",
	},
}
